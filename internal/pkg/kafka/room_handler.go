package kafka

import (
	"Shiftline/internal/pkg/eventbus"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// RoomUpdatedHandler 消费上游的房间变更事件，转投进程内事件总线。
// 目录层订阅总线后自行拉取权威记录
type RoomUpdatedHandler struct {
	bus *eventbus.Bus
}

func NewRoomUpdatedHandler(bus *eventbus.Bus) *RoomUpdatedHandler {
	return &RoomUpdatedHandler{bus: bus}
}

func (s *RoomUpdatedHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("room updated consumer setup")
	return nil
}

func (s *RoomUpdatedHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("room updated consumer cleanup")
	return nil
}

func (s *RoomUpdatedHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-room-updated consume claim")

	return pullMessageBatch(session, claim, func(ctx context.Context, msg *sarama.ConsumerMessage) error {
		var ev eventbus.RoomChanged
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			// 脏消息不重试，跳过
			log.Warn("unmarshal room changed event error", "err", err)
			return nil
		}
		if ev.MembershipID == 0 {
			log.Warn("room changed event missing chatroomUserId", "offset", msg.Offset)
			return nil
		}

		s.bus.Publish(ev)
		return nil
	})
}
