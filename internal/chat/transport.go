package chat

import (
	"context"
	"errors"
)

// ErrTransportNotReady 信令通道未就绪
var ErrTransportNotReady = errors.New("信令通道未就绪")

// Transport 发布/订阅信令通道抽象。连接管理(重连/退避)由实现方负责，
// 会话只把连接就绪当作外部前置条件
type Transport interface {
	Ready() bool
	Subscribe(ctx context.Context, channel string) (Subscription, error)
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscription 单个频道的订阅句柄。Close 后 Messages 通道关闭
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}
