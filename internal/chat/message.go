package chat

import (
	"Shiftline/internal/pkg/consts"
	"strconv"
	"time"
)

// MessageType 信令/消息类型
type MessageType string

const (
	TypeChat  MessageType = "CHAT"
	TypeJoin  MessageType = "JOIN"
	TypeLeave MessageType = "LEAVE"
)

// Message 房间内的一条消息。isGift 沿用线上 "Y"/"N" 约定
type Message struct {
	MessageID   uint64      `json:"messageId,omitempty"`
	Type        MessageType `json:"type"`
	RoomID      uint64      `json:"chatroomId"`
	UserID      uint64      `json:"userId"`
	Content     string      `json:"content"`
	SendDate    time.Time   `json:"sendDate"`
	IsGift      string      `json:"isGift"`
	UnreadCount int         `json:"unreadCount"`
}

// DisplayMessage 展示序列中的消息：与前一条同发送者时隐藏头部
type DisplayMessage struct {
	Message
	ShowSender bool `json:"showSender"`
}

// MembershipSnapshot 随每条信令携带的成员快照，服务端按此路由与落库
type MembershipSnapshot struct {
	MembershipID       uint64     `json:"chatroomUserId"`
	RoomID             uint64     `json:"chatroomId"`
	UserID             uint64     `json:"userId"`
	RoomName           string     `json:"chatroomName"`
	LastConnectionTime *time.Time `json:"lastConnectionTime"`
	CreatedTime        time.Time  `json:"createdTime"`
	ConnectionStatus   string     `json:"connectionStatus"`
	DarkMode           bool       `json:"isDarkMode"`
}

// SignalFrame 信令帧：消息体 + 成员快照
type SignalFrame struct {
	Message    Message            `json:"messageDTO"`
	Membership MembershipSnapshot `json:"chatroomUserDTO"`
}

// RoomChannel 房间信令频道名
func RoomChannel(roomID uint64) string {
	return consts.IMRoomKey + strconv.FormatUint(roomID, 10)
}

// signalFrame 组装一条 JOIN/LEAVE 控制帧
func signalFrame(t MessageType, snap MembershipSnapshot, content string) SignalFrame {
	return SignalFrame{
		Message: Message{
			Type:        t,
			RoomID:      snap.RoomID,
			UserID:      snap.UserID,
			Content:     content,
			SendDate:    time.Now(),
			IsGift:      consts.GiftFlagNo,
			UnreadCount: 1,
		},
		Membership: snap,
	}
}
