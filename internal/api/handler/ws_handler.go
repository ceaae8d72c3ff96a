package handler

import (
	"Shiftline/internal/api/dto"
	"Shiftline/internal/chat"
	"Shiftline/internal/pkg/response"
	"Shiftline/internal/pkg/security"
	"Shiftline/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	hub    *Hub
	imSvc  service.IMSessionService
	dirSvc service.DirectoryService
}

func NewWsHandler(hub *Hub, imSvc service.IMSessionService, dirSvc service.DirectoryService) *WsHandler {
	return &WsHandler{
		hub:    hub,
		imSvc:  imSvc,
		dirSvc: dirSvc,
	}
}

// sessionSink 把会话回调转成下行帧
type sessionSink struct {
	client *wsClient
}

func (s sessionSink) OnHistory(msgs []chat.DisplayMessage) {
	s.client.push(dto.ServerFrame{Type: dto.FrameHistory, Messages: msgs})
}

func (s sessionSink) OnMessage(msg chat.DisplayMessage) {
	s.client.push(dto.ServerFrame{Type: dto.FrameMessage, Message: &msg})
}

func (s sessionSink) OnUnreadSync(msgs []chat.DisplayMessage) {
	s.client.push(dto.ServerFrame{Type: dto.FrameUnreadSync, Messages: msgs})
}

// Connect WS 入口。一条连接对应一个在线用户，房间进出与消息发送
// 都走命令帧，服务端回推展示帧
func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权
	token := c.Query("token")
	if token == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Error(c, service.UnauthorizedError)
		return
	}
	userID := claims.UserID

	// 升级 Websocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	client := newWsClient(conn)
	if old := s.hub.add(userID, client); old != nil {
		old.shutdown()
	}
	log.Info("用户 WS 连接已建立", "userID", userID)

	// 用户级状态只归当前在线连接管：被新连接顶替的旧连接退出时，
	// 不得关掉新连接的房间会话或清掉它的目录缓存
	defer func() {
		client.shutdown()
		if s.hub.remove(userID, client) {
			s.imSvc.Exit(context.Background(), userID)
			s.dirSvc.Evict(userID)
			log.Info("用户 WS 连接已断开", "userID", userID)
		} else {
			log.Info("被新连接顶替的 WS 已回收", "userID", userID)
		}
	}()

	// 写循环：下行帧推送至客户端
	go func() {
		for {
			select {
			case frame := <-client.out:
				payload, err := json.Marshal(frame)
				if err != nil {
					log.Error("WS 帧序列化失败", "userID", userID, "err", err)
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Error("WS 推送失败", "userID", userID, "err", err)
					client.shutdown()
					return
				}
			case <-client.stop:
				return
			}
		}
	}()

	sink := sessionSink{client: client}

	// 读循环：处理客户端命令帧
	for {
		select {
		case <-client.stop:
			return
		default:
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.handleFrame(c.Request.Context(), userID, token, sink, client, payload)
	}
}

func (s *WsHandler) handleFrame(ctx context.Context, userID uint64, token string, sink sessionSink, client *wsClient, payload []byte) {
	var frame dto.ClientFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		client.push(dto.ServerFrame{Type: dto.FrameError, Error: service.ErrParamInvalid.Error()})
		return
	}

	s.imSvc.Touch(userID)

	switch frame.Action {
	case dto.ActionEnter:
		if frame.Room == nil || frame.Room.RoomID == 0 {
			client.push(dto.ServerFrame{Type: dto.FrameError, Error: service.ErrParamInvalid.Error()})
			return
		}
		if err := s.imSvc.Enter(ctx, userID, token, *frame.Room, sink); err != nil {
			client.push(dto.ServerFrame{Type: dto.FrameError, Error: err.Error()})
		}

	case dto.ActionExit:
		s.imSvc.Exit(ctx, userID)

	case dto.ActionSend:
		if frame.Message == nil || frame.Message.Content == "" {
			client.push(dto.ServerFrame{Type: dto.FrameError, Error: service.ErrParamInvalid.Error()})
			return
		}
		if err := s.imSvc.Send(ctx, userID, frame.Message); err != nil {
			client.push(dto.ServerFrame{Type: dto.FrameError, Error: err.Error()})
		}

	default:
		client.push(dto.ServerFrame{Type: dto.FrameError, Error: service.ErrParamInvalid.Error()})
	}
}
