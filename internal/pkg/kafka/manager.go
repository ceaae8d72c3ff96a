package kafka

import (
	"Shiftline/internal/api/config"
	"Shiftline/internal/pkg/eventbus"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	roomConsumer sarama.ConsumerGroup
	roomHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, bus *eventbus.Bus) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	roomConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaRoomConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	roomHandler := NewRoomUpdatedHandler(bus)

	return &ConsumerManager{
		roomConsumer: roomConsumer,
		roomHandler:  roomHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		topic := cfg.KafkaRoomConsumer.Topic
		log.Info("Room updated consumer started", "topic", topic)
		for {
			if err := m.roomConsumer.Consume(ctx, []string{topic}, m.roomHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.roomConsumer.Close(); err != nil {
		log.Error("Failed to close room consumer", "err", err)
	}

	return nil
}
