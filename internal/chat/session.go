package chat

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// State 会话状态机
//
//	Unmounted -> [Open, transport ready] -> PendingJoin
//	PendingJoin -> [自身 JOIN 回声 / 回声超时兜底] -> Active (历史已加载)
//	Active -> [对端 JOIN] -> Active (未读数递减)
//	Active -> [Close] -> Closed (尽力发送 LEAVE)
type State int32

const (
	StateUnmounted State = iota
	StatePendingJoin
	StateActive
	StateClosed
)

// DefaultJoinEchoTimeout JOIN 回声兜底超时：超过该时长未收到自身回声则直接拉历史
const DefaultJoinEchoTimeout = 3 * time.Second

var ErrSessionClosed = errors.New("房间会话已关闭")

// HistoryLoader 按成员快照拉取房间全量历史
type HistoryLoader interface {
	LoadHistory(ctx context.Context, snap *MembershipSnapshot) ([]Message, error)
}

// Sink 会话向展示层推送的回调。所有回调都在会话自身的 goroutine 上发起，
// 实现方不应阻塞
type Sink interface {
	OnHistory(msgs []DisplayMessage)
	OnMessage(msg DisplayMessage)
	OnUnreadSync(msgs []DisplayMessage)
}

// SessionConfig 打开会话所需的依赖与参数
type SessionConfig struct {
	Transport Transport
	History   HistoryLoader
	Sink      Sink
	Snapshot  MembershipSnapshot

	// JoinEchoTimeout 为 0 时取 DefaultJoinEchoTimeout
	JoinEchoTimeout time.Duration

	// OnRoomChanged 收到聊天消息后通知目录层，可为 nil
	OnRoomChanged func(membershipID, roomID uint64)
}

// Session 单个房间视图的会话实例。每个挂载的房间视图恰好持有一个订阅，
// 先退订再算 LEAVE 已发出
type Session struct {
	mu    sync.Mutex
	state State

	cfg     SessionConfig
	channel string
	sub     Subscription

	msgs           []Message
	historyStarted bool
	joinTimer      *time.Timer
}

// Open 订阅房间频道并发布 JOIN 信令。前置条件：传输层已就绪。
// 订阅先于发布，否则会错过服务端的 JOIN 回声
func Open(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if !cfg.Transport.Ready() {
		return nil, ErrTransportNotReady
	}

	s := &Session{
		cfg:     cfg,
		channel: RoomChannel(cfg.Snapshot.RoomID),
	}

	sub, err := cfg.Transport.Subscribe(ctx, s.channel)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	s.state = StatePendingJoin

	go s.readLoop(sub)

	// JOIN 发布失败不重试：在场状态是尽力而为
	join := signalFrame(TypeJoin, cfg.Snapshot, fmt.Sprintf("%d님이 입장했습니다.", cfg.Snapshot.UserID))
	if err := s.publish(ctx, join); err != nil {
		log.Warn("JOIN 信令发送失败", "roomID", cfg.Snapshot.RoomID, "err", err)
	}

	timeout := cfg.JoinEchoTimeout
	if timeout <= 0 {
		timeout = DefaultJoinEchoTimeout
	}
	s.joinTimer = time.AfterFunc(timeout, s.joinEchoFallback)

	return s, nil
}

// Send 发布一条用户消息。消息不直接入列，自身回声经订阅送回后上屏
func (s *Session) Send(ctx context.Context, msg Message) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	snap := s.cfg.Snapshot
	s.mu.Unlock()

	frame := SignalFrame{Message: msg, Membership: snap}
	return s.publish(ctx, frame)
}

// Close 幂等关闭：先退订，仍连接时尽力发布一条 LEAVE。
// 重复调用不会发出第二条 LEAVE
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	sub := s.sub
	s.sub = nil
	if s.joinTimer != nil {
		s.joinTimer.Stop()
	}
	s.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}

	if !s.cfg.Transport.Ready() {
		return
	}
	leave := signalFrame(TypeLeave, s.cfg.Snapshot, fmt.Sprintf("%d님이 퇴장했습니다.", s.cfg.Snapshot.UserID))
	if err := s.publish(ctx, leave); err != nil {
		log.Warn("LEAVE 信令发送失败", "roomID", s.cfg.Snapshot.RoomID, "err", err)
	}
}

// State 当前状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot 展示序列的拷贝，showSender 按相邻发送者推导
func (s *Session) Snapshot() []DisplayMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayLocked()
}

func (s *Session) publish(ctx context.Context, frame SignalFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return s.cfg.Transport.Publish(ctx, s.channel, payload)
}

func (s *Session) readLoop(sub Subscription) {
	for payload := range sub.Messages() {
		s.dispatch(payload)
	}
}

// dispatch 信令分发。解析失败的帧直接丢弃
func (s *Session) dispatch(payload []byte) {
	var frame SignalFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		log.Warn("丢弃无法解析的信令帧", "err", err)
		return
	}

	msg := frame.Message
	switch {
	case msg.Type == TypeJoin && msg.UserID == s.cfg.Snapshot.UserID:
		// 自身 JOIN 回声：订阅确认已生效，安全拉取历史
		s.onLocalJoinEcho()
	case msg.Type == TypeJoin:
		// 对端入场：不上屏，本地递减未读数
		s.decrementUnread()
	case msg.Type == TypeLeave:
		// 退场信令不上屏
	default:
		s.append(msg)
	}
}

func (s *Session) onLocalJoinEcho() {
	s.mu.Lock()
	if s.state != StatePendingJoin || s.historyStarted {
		s.mu.Unlock()
		return
	}
	s.state = StateActive
	s.historyStarted = true
	if s.joinTimer != nil {
		s.joinTimer.Stop()
	}
	s.mu.Unlock()

	go s.loadHistory()
}

// joinEchoFallback 回声丢失兜底：超时未收到回声也要把历史拉下来
func (s *Session) joinEchoFallback() {
	s.mu.Lock()
	if s.state != StatePendingJoin || s.historyStarted {
		s.mu.Unlock()
		return
	}
	s.state = StateActive
	s.historyStarted = true
	s.mu.Unlock()

	log.Warn("JOIN 回声超时，直接拉取历史", "roomID", s.cfg.Snapshot.RoomID)
	go s.loadHistory()
}

// loadHistory 整个会话生命周期内只执行一次。失败保持现状，不重试
func (s *Session) loadHistory() {
	snap := s.cfg.Snapshot
	msgs, err := s.cfg.History.LoadHistory(context.Background(), &snap)
	if err != nil {
		log.Error("拉取聊天历史失败", "roomID", snap.RoomID, "err", err)
		return
	}

	// 按发送时间升序稳定排序，同刻保持服务端返回次序
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].SendDate.Before(msgs[j].SendDate)
	})

	s.mu.Lock()
	// 迟到的响应守卫：会话已关闭则丢弃，避免写入已销毁的视图
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.msgs = msgs
	display := s.displayLocked()
	s.mu.Unlock()

	s.cfg.Sink.OnHistory(display)
}

// append 实时消息按时间戳归并插入，序列始终保持有序，
// 不依赖“实时消息必然晚于历史快照”的假设
func (s *Session) append(msg Message) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}

	idx := len(s.msgs)
	for idx > 0 && s.msgs[idx-1].SendDate.After(msg.SendDate) {
		idx--
	}
	s.msgs = append(s.msgs, Message{})
	copy(s.msgs[idx+1:], s.msgs[idx:])
	s.msgs[idx] = msg

	show := idx == 0 || s.msgs[idx-1].UserID != msg.UserID
	s.mu.Unlock()

	s.cfg.Sink.OnMessage(DisplayMessage{Message: msg, ShowSender: show})

	if msg.Type == TypeChat && s.cfg.OnRoomChanged != nil {
		s.cfg.OnRoomChanged(s.cfg.Snapshot.MembershipID, s.cfg.Snapshot.RoomID)
	}
}

// decrementUnread 对端 JOIN 视为已读一遍：全序列未读数 -1，下限 0。
// 纯本地推算，无服务端回执
func (s *Session) decrementUnread() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	for i := range s.msgs {
		if s.msgs[i].UnreadCount > 0 {
			s.msgs[i].UnreadCount--
		}
	}
	display := s.displayLocked()
	s.mu.Unlock()

	s.cfg.Sink.OnUnreadSync(display)
}

func (s *Session) displayLocked() []DisplayMessage {
	display := make([]DisplayMessage, 0, len(s.msgs))
	for i, m := range s.msgs {
		show := i == 0 || s.msgs[i-1].UserID != m.UserID
		display = append(display, DisplayMessage{Message: m, ShowSender: show})
	}
	return display
}
