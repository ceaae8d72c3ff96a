package eventbus

import "sync"

// RoomChanged 房间目录变更事件：信令层或上游消费侧发出，
// 目录层按 membershipId 拉单条记录打补丁
type RoomChanged struct {
	MembershipID uint64 `json:"chatroomUserId"`
	RoomID       uint64 `json:"chatroomId"`
}

// Handler 事件处理函数
type Handler func(ev RoomChanged)

// Bus 进程内事件总线，发布与处理同进程同步执行
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func New() *Bus {
	return &Bus{}
}

// Subscribe 注册处理函数
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish 派发事件到所有处理函数
func (b *Bus) Publish(ev RoomChanged) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
