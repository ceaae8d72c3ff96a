package api

import "Shiftline/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	WsHandler   *handler.WsHandler
	RoomHandler *handler.RoomHandler
	GiftHandler *handler.GiftHandler
}
