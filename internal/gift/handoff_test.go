package gift

import "testing"

func TestEnterLandingResolutionOrder(t *testing.T) {
	slot := NewSlot()
	slot.Set(Handoff{ReceiverID: 5, ReceiverName: "민수", FromChat: true})

	// 显式导航参数优先于交接槽
	got := slot.EnterLanding(&Receiver{ID: 9, Name: "영희"}, true, false)
	if got.ID != 9 || got.Name != "영희" {
		t.Fatalf("receiver = %+v, want 显式参数", got)
	}

	// 无显式参数时读槽
	got = slot.EnterLanding(nil, true, false)
	if got.ID != 5 || got.Name != "민수" {
		t.Fatalf("receiver = %+v, want 槽内收件人", got)
	}
}

func TestEnterLandingFallbackPlaceholder(t *testing.T) {
	slot := NewSlot()

	got := slot.EnterLanding(nil, true, false)
	if got.ID != 0 || got.Name != "선물받는 친구" {
		t.Fatalf("receiver = %+v, want 兜底占位", got)
	}

	// 显式参数没带名字时也补占位名
	got = slot.EnterLanding(&Receiver{ID: 3}, true, false)
	if got.ID != 3 || got.Name != "선물받는 친구" {
		t.Fatalf("receiver = %+v, want ID=3 + 占位名", got)
	}
}

func TestEnterLandingClearsOnShopVisit(t *testing.T) {
	slot := NewSlot()
	slot.Set(Handoff{ReceiverID: 5, ReceiverName: "민수", FromChat: true})

	// 纯商城入口：既非聊天也非好友，残留交接先清掉
	got := slot.EnterLanding(nil, false, false)
	if got.ID != 0 {
		t.Fatalf("receiver = %+v, want 占位 (槽已清)", got)
	}
	if _, ok := slot.Get(); ok {
		t.Fatal("商城入口后槽应为空")
	}

	// 后续聊天入口也读不到旧交接
	got = slot.EnterLanding(nil, true, false)
	if got.ID != 0 {
		t.Fatalf("receiver = %+v, want 占位", got)
	}
}

func TestSlotLastWriterWins(t *testing.T) {
	slot := NewSlot()
	slot.Set(Handoff{ReceiverID: 1, ReceiverName: "먼저"})
	slot.Set(Handoff{ReceiverID: 2, ReceiverName: "나중", FromFriend: true})

	h, ok := slot.Get()
	if !ok || h.ReceiverID != 2 || h.ReceiverName != "나중" {
		t.Fatalf("handoff = %+v, want 后写覆盖", h)
	}
}
