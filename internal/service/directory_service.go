package service

import (
	"Shiftline/internal/api/config"
	"Shiftline/internal/chat"
	"Shiftline/internal/pkg/eventbus"
	"Shiftline/internal/pkg/shiftapi"
	"context"
	"errors"
	log "log/slog"
	"sync"
)

// RoomPusher 目录变更的下行推送，由 WS 连接集线器实现
type RoomPusher interface {
	PushRoomUpdate(userID uint64, row *chat.RoomRow)
}

// DirectoryService 房间目录服务。每个在线用户一份目录，
// 全量列表懒加载，room-changed 事件触发单条拉取并就地打补丁
type DirectoryService interface {
	List(ctx context.Context, userID uint64, token string) ([]chat.RoomRow, error)
	Record(ctx context.Context, token string, membershipID uint64) (*chat.RoomRow, error)
	Evict(userID uint64)
}

type directoryServiceImpl struct {
	api    UpstreamAPI
	pusher RoomPusher

	mu   sync.Mutex
	dirs map[uint64]*chat.Directory
}

func NewDirectoryService(api UpstreamAPI, pusher RoomPusher, bus *eventbus.Bus) DirectoryService {
	s := &directoryServiceImpl{
		api:    api,
		pusher: pusher,
		dirs:   make(map[uint64]*chat.Directory),
	}
	bus.Subscribe(s.onRoomChanged)
	return s
}

func (s *directoryServiceImpl) dir(userID uint64) *chat.Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirs[userID]
	if d == nil {
		d = chat.NewDirectory()
		s.dirs[userID] = d
	}
	return d
}

// List 返回排序后的目录视图，首次访问时拉全量列表
func (s *directoryServiceImpl) List(ctx context.Context, userID uint64, token string) ([]chat.RoomRow, error) {
	d := s.dir(userID)
	if !d.Loaded() {
		rows, err := s.api.RoomList(ctx, token)
		if err != nil {
			log.Error("拉取房间列表失败", "userID", userID, "err", err)
			return nil, ErrUpstream
		}
		d.Reset(rows)
	}
	return d.Rows(), nil
}

// Record 按成员记录 ID 拉单条目录行
func (s *directoryServiceImpl) Record(ctx context.Context, token string, membershipID uint64) (*chat.RoomRow, error) {
	row, err := s.api.RoomRecord(ctx, token, membershipID)
	if err != nil {
		if errors.Is(err, shiftapi.ErrNotFound) {
			return nil, ErrRoomRecordNotFound
		}
		log.Error("拉取房间成员记录失败", "membershipID", membershipID, "err", err)
		return nil, ErrUpstream
	}
	return row, nil
}

// Evict 用户下线时释放目录缓存
func (s *directoryServiceImpl) Evict(userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirs, userID)
}

// onRoomChanged 事件只携带记录 ID，不带变更内容，这里拉单条记录做权威补丁。
// 拉取失败只记日志，等下一次事件兜底
func (s *directoryServiceImpl) onRoomChanged(ev eventbus.RoomChanged) {
	go func() {
		row, err := s.api.RoomRecord(context.Background(), config.Cfg.Upstream.ServiceToken, ev.MembershipID)
		if err != nil {
			log.Warn("房间变更补丁拉取失败", "membershipID", ev.MembershipID, "err", err)
			return
		}

		s.mu.Lock()
		d := s.dirs[row.UserID]
		s.mu.Unlock()
		if d == nil || !d.Loaded() {
			return
		}

		d.Apply(*row)
		if s.pusher != nil {
			s.pusher.PushRoomUpdate(row.UserID, row)
		}
	}()
}
