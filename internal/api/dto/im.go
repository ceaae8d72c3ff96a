package dto

import (
	"Shiftline/internal/chat"
)

// WS 命令帧动作
const (
	ActionEnter = "ENTER"
	ActionExit  = "EXIT"
	ActionSend  = "SEND"
)

// WS 推送帧类型
const (
	FrameHistory     = "HISTORY"
	FrameMessage     = "MESSAGE"
	FrameUnreadSync  = "UNREAD_SYNC"
	FrameRoomUpdated = "ROOM_UPDATED"
	FrameError       = "ERROR"
)

// ClientFrame 浏览器发来的命令帧
type ClientFrame struct {
	Action  string                   `json:"action" binding:"required"`
	Room    *chat.MembershipSnapshot `json:"room,omitempty"`
	Message *SendMessageReq          `json:"message,omitempty"`
}

// SendMessageReq 发送消息请求体。orderId 非空时按礼物消息组装内容后缀
type SendMessageReq struct {
	Content  string `json:"content" binding:"required"`
	OrderID  string `json:"orderId"`
	GiftType string `json:"giftType"`
}

// ServerFrame 推送给浏览器的帧
type ServerFrame struct {
	Type     string                `json:"type"`
	Message  *chat.DisplayMessage  `json:"message,omitempty"`
	Messages []chat.DisplayMessage `json:"messages,omitempty"`
	Room     *chat.RoomRow         `json:"room,omitempty"`
	Error    string                `json:"error,omitempty"`
}
