package service

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/pkg/shiftapi"
	"context"
	"testing"
)

func TestGiftLandingUsesHandoffSlot(t *testing.T) {
	svc := NewGiftService(&stubUpstream{})

	svc.StartHandoff(1, &dto.GiftHandoffReq{ReceiverID: 5, ReceiverName: "민수", FromChat: true, ChatroomID: 7})

	got := svc.Landing(1, &dto.GiftLandingReq{FromChat: true})
	if got.ReceiverID != 5 || got.ReceiverName != "민수" {
		t.Fatalf("receiver = %+v, want 槽内收件人", got)
	}
}

func TestGiftLandingExplicitOverridesSlot(t *testing.T) {
	svc := NewGiftService(&stubUpstream{})
	svc.StartHandoff(1, &dto.GiftHandoffReq{ReceiverID: 5, ReceiverName: "민수", FromChat: true})

	got := svc.Landing(1, &dto.GiftLandingReq{ReceiverID: 9, ReceiverName: "영희", FromChat: true})
	if got.ReceiverID != 9 || got.ReceiverName != "영희" {
		t.Fatalf("receiver = %+v, want 显式参数", got)
	}
}

func TestGiftLandingShopVisitClearsSlot(t *testing.T) {
	svc := NewGiftService(&stubUpstream{})
	svc.StartHandoff(1, &dto.GiftHandoffReq{ReceiverID: 5, ReceiverName: "민수", FromChat: true})

	got := svc.Landing(1, &dto.GiftLandingReq{})
	if got.ReceiverID != 0 || got.ReceiverName != "선물받는 친구" {
		t.Fatalf("receiver = %+v, want 兜底占位", got)
	}
}

func TestGiftSlotsIsolatedPerUser(t *testing.T) {
	svc := NewGiftService(&stubUpstream{})
	svc.StartHandoff(1, &dto.GiftHandoffReq{ReceiverID: 5, ReceiverName: "민수", FromChat: true})

	// 另一个用户看不到他人的交接
	got := svc.Landing(2, &dto.GiftLandingReq{FromChat: true})
	if got.ReceiverID != 0 {
		t.Fatalf("receiver = %+v, want 兜底占位", got)
	}
}

func TestGiftDetailNotFound(t *testing.T) {
	svc := NewGiftService(&stubUpstream{err: shiftapi.ErrNotFound})

	_, err := svc.Detail(context.Background(), "tok", 99)
	if err != ErrGiftNotFound {
		t.Fatalf("Detail = %v, want ErrGiftNotFound", err)
	}
}

func TestGiftDetailPassthrough(t *testing.T) {
	svc := NewGiftService(&stubUpstream{detail: &dto.GiftDetailDTO{GiftID: 3, GiftType: "VOUCHER"}})

	got, err := svc.Detail(context.Background(), "tok", 3)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if got.GiftID != 3 || got.GiftType != "VOUCHER" {
		t.Fatalf("detail = %+v", got)
	}
}
