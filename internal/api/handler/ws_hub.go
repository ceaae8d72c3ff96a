package handler

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/chat"
	log "log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// wsClient 单条 WS 连接的下行通道
type wsClient struct {
	conn     *websocket.Conn
	out      chan dto.ServerFrame
	stop     chan struct{}
	stopOnce sync.Once
}

func newWsClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		conn: conn,
		out:  make(chan dto.ServerFrame, 64),
		stop: make(chan struct{}),
	}
}

// shutdown 同时关掉底层连接，让阻塞在 ReadMessage 的读循环立即退出，
// 被顶替的旧连接不会再处理任何在途帧
func (c *wsClient) shutdown() {
	c.stopOnce.Do(func() {
		close(c.stop)
		_ = c.conn.Close()
	})
}

// push 非阻塞投递，慢连接积压时丢帧而不是拖住会话 goroutine
func (c *wsClient) push(frame dto.ServerFrame) {
	select {
	case c.out <- frame:
	case <-c.stop:
	default:
		log.Warn("WS 下行队列已满，丢弃帧", "type", frame.Type)
	}
}

// Hub 在线连接集线器，按用户注册下行通道。
// 同一用户重复连接时后来者顶掉先来者
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*wsClient
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint64]*wsClient)}
}

// add 注册连接，返回被顶替的旧连接(可为 nil)
func (h *Hub) add(userID uint64, c *wsClient) *wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.clients[userID]
	h.clients[userID] = c
	return old
}

// remove 只移除仍指向自己的注册项，防止顶掉新连接。
// 返回是否仍是该用户的在线连接：被顶替的旧连接返回 false，
// 其退出流程不得再触碰用户级状态
func (h *Hub) remove(userID uint64, c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == c {
		delete(h.clients, userID)
		return true
	}
	return false
}

// PushRoomUpdate 目录变更下行推送，用户不在线时静默丢弃
func (h *Hub) PushRoomUpdate(userID uint64, row *chat.RoomRow) {
	h.mu.RLock()
	c := h.clients[userID]
	h.mu.RUnlock()

	if c == nil {
		return
	}
	c.push(dto.ServerFrame{Type: dto.FrameRoomUpdated, Room: row})
}
