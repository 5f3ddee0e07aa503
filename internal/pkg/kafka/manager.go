package kafka

import (
	"Lumen/internal/api/config"
	"Lumen/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	trackingConsumer sarama.ConsumerGroup
	trackingHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, analyticsSvc service.AnalyticsService) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	trackingConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaTrackingConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		trackingConsumer: trackingConsumer,
		trackingHandler:  NewTrackingHandler(analyticsSvc),
	}, nil
}

// Start 启动所有消费者，ctx 取消后关闭
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	// 启动 Tracking Consumer
	go func() {
		topic := cfg.KafkaTrackingConsumer.Topic
		log.Info("Tracking consumer started", "topic", topic)
		for {
			if err := m.trackingConsumer.Consume(ctx, []string{topic}, m.trackingHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		for err := range m.trackingConsumer.Errors() {
			log.Error("Tracking consumer error", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.trackingConsumer.Close(); err != nil {
		log.Error("Failed to close tracking consumer", "err", err)
	}
	return nil
}
