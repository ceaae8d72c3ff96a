package service

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/gift"
	"Shiftline/internal/pkg/shiftapi"
	"context"
	"errors"
	log "log/slog"
	"sync"
)

// GiftService 礼物交接与详情。交接槽按用户隔离，
// 不同浏览器标签不会互相污染收件人
type GiftService interface {
	StartHandoff(userID uint64, req *dto.GiftHandoffReq)
	Landing(userID uint64, req *dto.GiftLandingReq) *dto.GiftReceiverDTO
	Detail(ctx context.Context, token string, giftID uint64) (*dto.GiftDetailDTO, error)
	Evict(userID uint64)
}

type giftServiceImpl struct {
	api UpstreamAPI

	mu    sync.Mutex
	slots map[uint64]*gift.Slot
}

func NewGiftService(api UpstreamAPI) GiftService {
	return &giftServiceImpl{
		api:   api,
		slots: make(map[uint64]*gift.Slot),
	}
}

func (s *giftServiceImpl) slot(userID uint64) *gift.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[userID]
	if sl == nil {
		sl = gift.NewSlot()
		s.slots[userID] = sl
	}
	return sl
}

// StartHandoff 聊天/好友流程发起送礼，写入交接槽，后写覆盖先写
func (s *giftServiceImpl) StartHandoff(userID uint64, req *dto.GiftHandoffReq) {
	s.slot(userID).Set(gift.Handoff{
		ReceiverID:   req.ReceiverID,
		ReceiverName: req.ReceiverName,
		FromChat:     req.FromChat,
		FromFriend:   req.FromFriend,
		RoomID:       req.ChatroomID,
	})
}

// Landing 礼物落地页入口，解析本次下单的收件人
func (s *giftServiceImpl) Landing(userID uint64, req *dto.GiftLandingReq) *dto.GiftReceiverDTO {
	var explicit *gift.Receiver
	if req.ReceiverID != 0 {
		explicit = &gift.Receiver{ID: req.ReceiverID, Name: req.ReceiverName}
	}

	r := s.slot(userID).EnterLanding(explicit, req.FromChat, req.FromFriend)
	return &dto.GiftReceiverDTO{ReceiverID: r.ID, ReceiverName: r.Name}
}

// Detail 礼物详情透传
func (s *giftServiceImpl) Detail(ctx context.Context, token string, giftID uint64) (*dto.GiftDetailDTO, error) {
	out, err := s.api.GiftDetail(ctx, token, giftID)
	if err != nil {
		if errors.Is(err, shiftapi.ErrNotFound) {
			return nil, ErrGiftNotFound
		}
		log.Error("拉取礼物详情失败", "giftID", giftID, "err", err)
		return nil, ErrUpstream
	}
	return out, nil
}

// Evict 用户下线时释放交接槽
func (s *giftServiceImpl) Evict(userID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, userID)
}
