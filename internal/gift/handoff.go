package gift

import (
	"Shiftline/internal/pkg/consts"
	"sync"
)

// Handoff 礼物收件人交接上下文：聊天/好友流程写入，礼物落地页读取。
// 跨路由传递收件人身份，不依赖路由参数
type Handoff struct {
	ReceiverID   uint64 `json:"receiverId"`
	ReceiverName string `json:"receiverName"`
	FromChat     bool   `json:"fromChat"`
	FromFriend   bool   `json:"fromFriend"`
	RoomID       uint64 `json:"chatroomId,omitempty"`
}

// Receiver 显式导航携带的收件人参数
type Receiver struct {
	ID   uint64 `json:"receiverId"`
	Name string `json:"receiverName"`
}

// Slot 单用户的交接槽：同一时刻最多一笔交接在途，后写覆盖先写
type Slot struct {
	mu  sync.Mutex
	cur *Handoff
}

func NewSlot() *Slot {
	return &Slot{}
}

// Set 覆盖写入
func (s *Slot) Set(h Handoff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = &h
}

// Clear 清空槽
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = nil
}

// Get 读取当前交接
func (s *Slot) Get() (Handoff, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return Handoff{}, false
	}
	return *s.cur, true
}

// EnterLanding 礼物落地页入口。来源既非聊天也非好友(纯商城访问)时先清槽，
// 防止残留收件人泄漏进无关的购买流程。解析顺序：
// 显式导航参数 -> 交接槽 -> 兜底占位，取第一个非空来源
func (s *Slot) EnterLanding(explicit *Receiver, fromChat, fromFriend bool) Receiver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fromChat && !fromFriend {
		s.cur = nil
	}

	if explicit != nil && explicit.ID != 0 {
		r := *explicit
		if r.Name == "" {
			r.Name = consts.DefaultReceiverName
		}
		return r
	}
	if s.cur != nil && s.cur.ReceiverID != 0 {
		name := s.cur.ReceiverName
		if name == "" {
			name = consts.DefaultReceiverName
		}
		return Receiver{ID: s.cur.ReceiverID, Name: name}
	}
	return Receiver{Name: consts.DefaultReceiverName}
}
