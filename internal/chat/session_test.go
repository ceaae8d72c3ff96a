package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// fakeTransport 进程内假传输：发布会回送给所有订阅者，含发布者自身，
// 与 Redis Pub/Sub 的回声语义一致
type fakeTransport struct {
	mu        sync.Mutex
	ready     bool
	echo      bool
	subs      []*fakeSub
	published []SignalFrame
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{ready: true, echo: true}
}

func (t *fakeTransport) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready
}

func (t *fakeTransport) Subscribe(_ context.Context, _ string) (Subscription, error) {
	sub := &fakeSub{ch: make(chan []byte, 64)}
	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()
	return sub, nil
}

func (t *fakeTransport) Publish(_ context.Context, _ string, payload []byte) error {
	var frame SignalFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return err
	}

	t.mu.Lock()
	t.published = append(t.published, frame)
	subs := append([]*fakeSub(nil), t.subs...)
	echo := t.echo
	t.mu.Unlock()

	if !echo {
		return nil
	}
	for _, sub := range subs {
		sub.deliver(payload)
	}
	return nil
}

// inject 绕过发布记录，直接向订阅者投递一帧(模拟对端消息)
func (t *fakeTransport) inject(tb testing.TB, frame SignalFrame) {
	tb.Helper()
	payload, err := json.Marshal(frame)
	if err != nil {
		tb.Fatalf("marshal frame: %v", err)
	}
	t.mu.Lock()
	subs := append([]*fakeSub(nil), t.subs...)
	t.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(payload)
	}
}

func (t *fakeTransport) countByType(mt MessageType) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, f := range t.published {
		if f.Message.Type == mt {
			n++
		}
	}
	return n
}

type fakeSub struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (s *fakeSub) deliver(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- payload
}

func (s *fakeSub) Messages() <-chan []byte {
	return s.ch
}

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// fakeHistory 可控的历史加载器
type fakeHistory struct {
	mu    sync.Mutex
	msgs  []Message
	calls int
	gate  chan struct{}
}

func (h *fakeHistory) LoadHistory(_ context.Context, _ *MembershipSnapshot) ([]Message, error) {
	h.mu.Lock()
	h.calls++
	gate := h.gate
	msgs := append([]Message(nil), h.msgs...)
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return msgs, nil
}

func (h *fakeHistory) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// recordSink 把回调转成可等待的事件
type recordSink struct {
	history    chan []DisplayMessage
	message    chan DisplayMessage
	unreadSync chan []DisplayMessage
}

func newRecordSink() *recordSink {
	return &recordSink{
		history:    make(chan []DisplayMessage, 8),
		message:    make(chan DisplayMessage, 8),
		unreadSync: make(chan []DisplayMessage, 8),
	}
}

func (s *recordSink) OnHistory(msgs []DisplayMessage)    { s.history <- msgs }
func (s *recordSink) OnMessage(msg DisplayMessage)       { s.message <- msg }
func (s *recordSink) OnUnreadSync(msgs []DisplayMessage) { s.unreadSync <- msgs }

func waitHistory(t *testing.T, sink *recordSink) []DisplayMessage {
	t.Helper()
	select {
	case msgs := <-sink.history:
		return msgs
	case <-time.After(2 * time.Second):
		t.Fatal("历史未在期限内送达")
		return nil
	}
}

func waitMessage(t *testing.T, sink *recordSink) DisplayMessage {
	t.Helper()
	select {
	case msg := <-sink.message:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("消息未在期限内送达")
		return DisplayMessage{}
	}
}

func testSnapshot(userID uint64) MembershipSnapshot {
	return MembershipSnapshot{
		MembershipID: 11,
		RoomID:       7,
		UserID:       userID,
		RoomName:     "민수님과의 채팅방",
	}
}

func at(sec int) time.Time {
	return time.Date(2026, 8, 1, 12, 0, sec, 0, time.UTC)
}

func chatFrame(userID uint64, content string, sendDate time.Time, unread int) SignalFrame {
	return SignalFrame{
		Message: Message{
			Type:        TypeChat,
			RoomID:      7,
			UserID:      userID,
			Content:     content,
			SendDate:    sendDate,
			IsGift:      "N",
			UnreadCount: unread,
		},
		Membership: testSnapshot(userID),
	}
}

func joinFrame(userID uint64) SignalFrame {
	return signalFrame(TypeJoin, testSnapshot(userID), "입장")
}

func TestOpenLoadsHistoryOnJoinEcho(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{msgs: []Message{
		{Type: TypeChat, UserID: 2, Content: "뒤", SendDate: at(3), UnreadCount: 1},
		{Type: TypeChat, UserID: 1, Content: "앞", SendDate: at(1)},
	}}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())

	msgs := waitHistory(t, sink)
	if len(msgs) != 2 {
		t.Fatalf("历史长度 = %d, want 2", len(msgs))
	}
	// 无序返回的历史按发送时间升序重排
	if msgs[0].Content != "앞" || msgs[1].Content != "뒤" {
		t.Fatalf("历史未按时间升序: %q, %q", msgs[0].Content, msgs[1].Content)
	}
	if transport.countByType(TypeJoin) != 1 {
		t.Fatalf("JOIN 发布次数 = %d, want 1", transport.countByType(TypeJoin))
	}
	if sess.State() != StateActive {
		t.Fatalf("state = %v, want StateActive", sess.State())
	}
}

func TestHistoryLoadsExactlyOnce(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport:       transport,
		History:         history,
		Sink:            sink,
		Snapshot:        testSnapshot(1),
		JoinEchoTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())

	waitHistory(t, sink)

	// 回声已处理后，兜底定时器到期不应再次拉取
	time.Sleep(150 * time.Millisecond)
	if got := history.callCount(); got != 1 {
		t.Fatalf("历史拉取次数 = %d, want 1", got)
	}
}

func TestJoinEchoTimeoutFallback(t *testing.T) {
	transport := newFakeTransport()
	transport.echo = false // 回声丢失
	history := &fakeHistory{}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport:       transport,
		History:         history,
		Sink:            sink,
		Snapshot:        testSnapshot(1),
		JoinEchoTimeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())

	waitHistory(t, sink)
	if got := history.callCount(); got != 1 {
		t.Fatalf("历史拉取次数 = %d, want 1", got)
	}
}

func TestStaleHistoryDroppedAfterClose(t *testing.T) {
	transport := newFakeTransport()
	gate := make(chan struct{})
	history := &fakeHistory{gate: gate}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// 历史响应迟到：关闭会话后才返回
	for history.callCount() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	sess.Close(context.Background())
	close(gate)

	select {
	case <-sink.history:
		t.Fatal("已关闭的会话不应再收到历史")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPeerJoinDecrementsUnread(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{msgs: []Message{
		{Type: TypeChat, UserID: 1, Content: "a", SendDate: at(1), UnreadCount: 1},
		{Type: TypeChat, UserID: 1, Content: "b", SendDate: at(2), UnreadCount: 0},
	}}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())
	waitHistory(t, sink)

	transport.inject(t, joinFrame(2))

	select {
	case msgs := <-sink.unreadSync:
		if msgs[0].UnreadCount != 0 {
			t.Fatalf("unreadCount = %d, want 0", msgs[0].UnreadCount)
		}
		// 已经为 0 的不再往下减
		if msgs[1].UnreadCount != 0 {
			t.Fatalf("unreadCount = %d, want 0 (下限)", msgs[1].UnreadCount)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("未读同步未送达")
	}
}

func TestJoinLeaveNotDisplayed(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())
	waitHistory(t, sink)

	transport.inject(t, joinFrame(2))
	transport.inject(t, signalFrame(TypeLeave, testSnapshot(2), "퇴장"))
	transport.inject(t, chatFrame(2, "안녕", at(5), 1))

	msg := waitMessage(t, sink)
	if msg.Content != "안녕" {
		t.Fatalf("上屏消息 = %q, want 안녕", msg.Content)
	}
	if got := len(sess.Snapshot()); got != 1 {
		t.Fatalf("展示序列长度 = %d, want 1", got)
	}
}

func TestLiveMessageMergeInsert(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{msgs: []Message{
		{Type: TypeChat, UserID: 1, Content: "t1", SendDate: at(1)},
		{Type: TypeChat, UserID: 2, Content: "t3", SendDate: at(3)},
	}}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())
	waitHistory(t, sink)

	// 时间戳早于序列尾部的实时消息按时间戳插入中间
	transport.inject(t, chatFrame(1, "t2", at(2), 1))
	waitMessage(t, sink)

	got := sess.Snapshot()
	want := []string{"t1", "t2", "t3"}
	if len(got) != len(want) {
		t.Fatalf("序列长度 = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Content != w {
			t.Fatalf("序列[%d] = %q, want %q", i, got[i].Content, w)
		}
	}
}

func TestShowSenderGrouping(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{msgs: []Message{
		{Type: TypeChat, UserID: 1, Content: "a", SendDate: at(1)},
		{Type: TypeChat, UserID: 1, Content: "b", SendDate: at(2)},
		{Type: TypeChat, UserID: 2, Content: "c", SendDate: at(3)},
	}}
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   history,
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())

	msgs := waitHistory(t, sink)
	want := []bool{true, false, true}
	for i, w := range want {
		if msgs[i].ShowSender != w {
			t.Fatalf("showSender[%d] = %v, want %v", i, msgs[i].ShowSender, w)
		}
	}
}

func TestCloseSendsSingleLeave(t *testing.T) {
	transport := newFakeTransport()
	sink := newRecordSink()

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   &fakeHistory{},
		Sink:      sink,
		Snapshot:  testSnapshot(1),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitHistory(t, sink)

	sess.Close(context.Background())
	sess.Close(context.Background())

	if got := transport.countByType(TypeLeave); got != 1 {
		t.Fatalf("LEAVE 发布次数 = %d, want 1", got)
	}
	if err := sess.Send(context.Background(), Message{Type: TypeChat, Content: "x"}); err != ErrSessionClosed {
		t.Fatalf("Send after Close = %v, want ErrSessionClosed", err)
	}
}

func TestOpenFailsWhenTransportNotReady(t *testing.T) {
	transport := newFakeTransport()
	transport.ready = false

	_, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   &fakeHistory{},
		Sink:      newRecordSink(),
		Snapshot:  testSnapshot(1),
	})
	if err != ErrTransportNotReady {
		t.Fatalf("Open = %v, want ErrTransportNotReady", err)
	}
}

func TestChatMessageFiresRoomChanged(t *testing.T) {
	transport := newFakeTransport()
	sink := newRecordSink()
	changed := make(chan uint64, 4)

	sess, err := Open(context.Background(), SessionConfig{
		Transport: transport,
		History:   &fakeHistory{},
		Sink:      sink,
		Snapshot:  testSnapshot(1),
		OnRoomChanged: func(membershipID, roomID uint64) {
			changed <- membershipID
		},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sess.Close(context.Background())
	waitHistory(t, sink)

	transport.inject(t, chatFrame(2, "hi", at(5), 1))
	waitMessage(t, sink)

	select {
	case id := <-changed:
		if id != 11 {
			t.Fatalf("membershipID = %d, want 11", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("目录变更通知未送达")
	}

	// JOIN 信令不触发目录变更
	transport.inject(t, joinFrame(2))
	select {
	case <-changed:
		t.Fatal("JOIN 不应触发目录变更")
	case <-time.After(100 * time.Millisecond):
	}
}
