package dto

import "time"

// GiftHandoffReq 聊天/好友流程内发起送礼，写入交接槽
type GiftHandoffReq struct {
	ReceiverID   uint64 `json:"receiverId" binding:"required"`
	ReceiverName string `json:"receiverName"`
	FromChat     bool   `json:"fromChat"`
	FromFriend   bool   `json:"fromFriend"`
	ChatroomID   uint64 `json:"chatroomId"`
}

// GiftLandingReq 礼物落地页入口参数。导航显式携带的收件人可为空
type GiftLandingReq struct {
	ReceiverID   uint64 `json:"receiverId"`
	ReceiverName string `json:"receiverName"`
	FromChat     bool   `json:"fromChat"`
	FromFriend   bool   `json:"fromFriend"`
}

// GiftReceiverDTO 解析后的收件人
type GiftReceiverDTO struct {
	ReceiverID   uint64 `json:"receiverId"`
	ReceiverName string `json:"receiverName"`
}

// GiftDetailDTO 礼物详情 (上游透传)
type GiftDetailDTO struct {
	GiftID         uint64     `json:"giftId"`
	OrderID        uint64     `json:"orderId"`
	GiftType       string     `json:"giftType"`
	ProductID      uint64     `json:"productId,omitempty"`
	ProductName    string     `json:"productName,omitempty"`
	Quantity       int        `json:"quantity,omitempty"`
	OrderStatus    string     `json:"orderStatus,omitempty"`
	DeliveryStatus string     `json:"deliveryStatus,omitempty"`
	SenderID       uint64     `json:"senderId,omitempty"`
	SenderName     string     `json:"senderName,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}
