package redis

import (
	"Shiftline/internal/chat"
	"context"

	"github.com/redis/go-redis/v9"
)

// SignalTransport 基于 Redis Pub/Sub 的信令传输实现。
// 一个房间一个频道，发布会回送给包括自己在内的全部订阅者，
// 自身 JOIN 回声由此天然成立
type SignalTransport struct{}

func NewSignalTransport() *SignalTransport {
	return &SignalTransport{}
}

func (t *SignalTransport) Ready() bool {
	return Rdb != nil
}

// Subscribe 建立订阅并等待确认后才返回，保证先订阅后发布的次序
func (t *SignalTransport) Subscribe(ctx context.Context, channel string) (chat.Subscription, error) {
	if Rdb == nil {
		return nil, chat.ErrTransportNotReady
	}

	ps := Rdb.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &pubSubSubscription{ps: ps, out: make(chan []byte, 64)}
	go sub.pump()
	return sub, nil
}

func (t *SignalTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if Rdb == nil {
		return chat.ErrTransportNotReady
	}
	return Rdb.Publish(ctx, channel, payload).Err()
}

type pubSubSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *pubSubSubscription) pump() {
	defer close(s.out)
	for msg := range s.ps.Channel() {
		s.out <- []byte(msg.Payload)
	}
}

func (s *pubSubSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *pubSubSubscription) Close() error {
	return s.ps.Close()
}
