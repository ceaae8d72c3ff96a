package chat

import "strings"

// 礼物消息内容约定：displayText & orderId & giftType，以 & 分隔，
// 最后两段保留给订单号和礼物类型

const giftFieldSep = "&"

// ComposeGiftContent 组装礼物消息内容
func ComposeGiftContent(text, orderID, giftType string) string {
	return strings.Join([]string{text, orderID, giftType}, giftFieldSep)
}

// StripGiftContent 去掉订单号/类型后缀，返回展示文本。
// 分段不足时按原文返回，不视为错误
func StripGiftContent(content string) string {
	parts := strings.Split(content, giftFieldSep)
	if len(parts) < 3 {
		return content
	}
	return strings.TrimSpace(strings.Join(parts[:len(parts)-2], giftFieldSep))
}

// GiftOrderID 提取订单号，格式不符返回空串
func GiftOrderID(content string) string {
	parts := strings.Split(content, giftFieldSep)
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

// GiftType 提取礼物类型，格式不符返回空串
func GiftType(content string) string {
	parts := strings.Split(content, giftFieldSep)
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}
