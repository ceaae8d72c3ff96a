package service

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/chat"
	"context"
)

// UpstreamAPI 商城主站接口抽象，由 shiftapi.Client 实现
type UpstreamAPI interface {
	History(ctx context.Context, token string, snap *chat.MembershipSnapshot) ([]chat.Message, error)
	RoomRecord(ctx context.Context, token string, membershipID uint64) (*chat.RoomRow, error)
	RoomList(ctx context.Context, token string) ([]chat.RoomRow, error)
	GiftDetail(ctx context.Context, token string, giftID uint64) (*dto.GiftDetailDTO, error)
}

// historyLoader 把用户凭据绑定到会话的历史拉取上
type historyLoader struct {
	api   UpstreamAPI
	token string
}

func (l historyLoader) LoadHistory(ctx context.Context, snap *chat.MembershipSnapshot) ([]chat.Message, error) {
	return l.api.History(ctx, l.token, snap)
}
