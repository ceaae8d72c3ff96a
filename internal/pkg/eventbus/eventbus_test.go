package eventbus

import "testing"

func TestBusDispatchesToAllHandlers(t *testing.T) {
	bus := New()

	var got []uint64
	bus.Subscribe(func(ev RoomChanged) {
		got = append(got, ev.MembershipID)
	})
	bus.Subscribe(func(ev RoomChanged) {
		got = append(got, ev.MembershipID+100)
	})

	bus.Publish(RoomChanged{MembershipID: 7, RoomID: 3})

	if len(got) != 2 || got[0] != 7 || got[1] != 107 {
		t.Fatalf("handlers = %v, want [7 107]", got)
	}
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := New()
	// 无订阅者时发布不报错不阻塞
	bus.Publish(RoomChanged{MembershipID: 1})
}
