package shiftapi

import (
	"Shiftline/internal/api/config"
	"Shiftline/internal/api/dto"
	"Shiftline/internal/chat"
	"context"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// ErrNotFound 上游资源不存在
var ErrNotFound = errors.New("上游资源不存在")

// Client 商城主站 API 客户端。历史消息、房间成员记录、礼物详情等
// 均为服务端所有，这里只做瘦请求/响应调用
type Client struct {
	http *resty.Client
}

func New(cfg config.UpstreamConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{http: c}
}

// History 拉取房间全量历史。请求体携带完整成员快照，响应列表无序
func (c *Client) History(ctx context.Context, token string, snap *chat.MembershipSnapshot) ([]chat.Message, error) {
	var out []chat.Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(snap).
		SetResult(&out).
		Post("/messages/history")
	if err != nil {
		return nil, errors.Wrap(err, "请求聊天历史失败")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("聊天历史接口返回 %d", resp.StatusCode())
	}
	return out, nil
}

// RoomRecord 按成员记录 ID 拉取单条目录行
func (c *Client) RoomRecord(ctx context.Context, token string, membershipID uint64) (*chat.RoomRow, error) {
	var out chat.RoomRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/chatroom/users/" + strconv.FormatUint(membershipID, 10))
	if err != nil {
		return nil, errors.Wrap(err, "请求房间成员记录失败")
	}
	if resp.StatusCode() == 404 {
		return nil, ErrNotFound
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("房间成员记录接口返回 %d", resp.StatusCode())
	}
	return &out, nil
}

// RoomList 拉取当前用户的房间列表
func (c *Client) RoomList(ctx context.Context, token string) ([]chat.RoomRow, error) {
	var out []chat.RoomRow
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/chatrooms")
	if err != nil {
		return nil, errors.Wrap(err, "请求房间列表失败")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("房间列表接口返回 %d", resp.StatusCode())
	}
	return out, nil
}

// GiftDetail 礼物详情透传
func (c *Client) GiftDetail(ctx context.Context, token string, giftID uint64) (*dto.GiftDetailDTO, error) {
	var out dto.GiftDetailDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&out).
		Get("/gifts/" + strconv.FormatUint(giftID, 10))
	if err != nil {
		return nil, errors.Wrap(err, "请求礼物详情失败")
	}
	if resp.StatusCode() == 404 {
		return nil, ErrNotFound
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("礼物详情接口返回 %d", resp.StatusCode())
	}
	return &out, nil
}
