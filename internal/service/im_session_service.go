package service

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/chat"
	"Shiftline/internal/pkg/consts"
	"Shiftline/internal/pkg/eventbus"
	"context"
	"errors"
	log "log/slog"
	"sync"
	"time"
)

// IMSessionService 房间会话编排。每个已连接用户同一时刻最多一个活跃房间会话，
// 重复进入会先关掉旧会话
type IMSessionService interface {
	Enter(ctx context.Context, userID uint64, token string, snap chat.MembershipSnapshot, sink chat.Sink) error
	Exit(ctx context.Context, userID uint64)
	Send(ctx context.Context, userID uint64, req *dto.SendMessageReq) error
	Touch(userID uint64)
	SweepIdle(maxIdle time.Duration) int
	CloseAll()
}

type imSessionServiceImpl struct {
	transport       chat.Transport
	api             UpstreamAPI
	bus             *eventbus.Bus
	joinEchoTimeout time.Duration

	mu       sync.Mutex
	sessions map[uint64]*userSession
}

type userSession struct {
	sess       *chat.Session
	snap       chat.MembershipSnapshot
	lastActive time.Time
}

func NewIMSessionService(transport chat.Transport, api UpstreamAPI, bus *eventbus.Bus, joinEchoTimeout time.Duration) IMSessionService {
	return &imSessionServiceImpl{
		transport:       transport,
		api:             api,
		bus:             bus,
		joinEchoTimeout: joinEchoTimeout,
		sessions:        make(map[uint64]*userSession),
	}
}

// Enter 进入房间：订阅 + JOIN 信令 + 等待回声拉历史，全部交给 chat.Session
func (s *imSessionServiceImpl) Enter(ctx context.Context, userID uint64, token string, snap chat.MembershipSnapshot, sink chat.Sink) error {
	// 同一连接重复进入时先退出旧房间，保证单会话单订阅
	s.Exit(ctx, userID)

	snap.UserID = userID

	sess, err := chat.Open(ctx, chat.SessionConfig{
		Transport:       s.transport,
		History:         historyLoader{api: s.api, token: token},
		Sink:            sink,
		Snapshot:        snap,
		JoinEchoTimeout: s.joinEchoTimeout,
		OnRoomChanged: func(membershipID, roomID uint64) {
			s.bus.Publish(eventbus.RoomChanged{MembershipID: membershipID, RoomID: roomID})
		},
	})
	if err != nil {
		if errors.Is(err, chat.ErrTransportNotReady) {
			return ErrTransportNotReady
		}
		log.Error("打开房间会话失败", "userID", userID, "roomID", snap.RoomID, "err", err)
		return UnExpectedError
	}

	s.mu.Lock()
	s.sessions[userID] = &userSession{sess: sess, snap: snap, lastActive: time.Now()}
	s.mu.Unlock()

	log.Info("房间会话已建立", "userID", userID, "roomID", snap.RoomID)
	return nil
}

// Exit 退出当前房间，无会话时为空操作
func (s *imSessionServiceImpl) Exit(ctx context.Context, userID uint64) {
	s.mu.Lock()
	us := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if us != nil {
		us.sess.Close(ctx)
		log.Info("房间会话已关闭", "userID", userID, "roomID", us.snap.RoomID)
	}
}

// Send 在当前房间发布一条聊天消息。orderId 非空时组装礼物内容后缀
func (s *imSessionServiceImpl) Send(ctx context.Context, userID uint64, req *dto.SendMessageReq) error {
	s.mu.Lock()
	us := s.sessions[userID]
	if us != nil {
		us.lastActive = time.Now()
	}
	s.mu.Unlock()

	if us == nil {
		return ErrRoomSessionNotFound
	}

	content := req.Content
	isGift := consts.GiftFlagNo
	if req.OrderID != "" {
		giftType := req.GiftType
		if giftType == "" {
			giftType = consts.GiftTypeProduct
		}
		content = chat.ComposeGiftContent(req.Content, req.OrderID, giftType)
		isGift = consts.GiftFlagYes
	}

	msg := chat.Message{
		Type:        chat.TypeChat,
		RoomID:      us.snap.RoomID,
		UserID:      userID,
		Content:     content,
		SendDate:    time.Now(),
		IsGift:      isGift,
		UnreadCount: 1,
	}

	if err := us.sess.Send(ctx, msg); err != nil {
		if errors.Is(err, chat.ErrSessionClosed) {
			return ErrRoomSessionNotFound
		}
		log.Error("消息发布失败", "userID", userID, "roomID", us.snap.RoomID, "err", err)
		return ErrTransportNotReady
	}
	return nil
}

// Touch 记录连接活跃时间，供空闲清理判断
func (s *imSessionServiceImpl) Touch(userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if us := s.sessions[userID]; us != nil {
		us.lastActive = time.Now()
	}
}

// SweepIdle 关闭超过空闲阈值的会话，让死连接也能尽力发出 LEAVE
func (s *imSessionServiceImpl) SweepIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	var stale []*userSession
	for userID, us := range s.sessions {
		if us.lastActive.Before(cutoff) {
			stale = append(stale, us)
			delete(s.sessions, userID)
		}
	}
	s.mu.Unlock()

	for _, us := range stale {
		us.sess.Close(context.Background())
	}
	return len(stale)
}

// CloseAll 进程退出前关闭全部会话
func (s *imSessionServiceImpl) CloseAll() {
	s.mu.Lock()
	all := make([]*userSession, 0, len(s.sessions))
	for userID, us := range s.sessions {
		all = append(all, us)
		delete(s.sessions, userID)
	}
	s.mu.Unlock()

	for _, us := range all {
		us.sess.Close(context.Background())
	}
	if len(all) > 0 {
		log.Info("全部房间会话已关闭", "count", len(all))
	}
}
