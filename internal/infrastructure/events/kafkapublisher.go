package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/keyward-io/keyward/internal/shared/config"
	"github.com/keyward-io/keyward/internal/shared/logger"
)

// KafkaPublisher writes verification events to a Kafka topic, keyed by team
// so each team's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger logger.Interface
}

func NewKafkaPublisher(cfg *config.EventsConfig, log logger.Interface) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 5 * time.Second,
		},
		topic:  cfg.Topic,
		logger: log,
	}
}

func (p *KafkaPublisher) PublishVerification(ctx context.Context, event VerificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.TeamSID),
		Value: value,
	})
	if err != nil {
		p.logger.Warnw("failed to publish verification event",
			"topic", p.topic,
			"team_sid", event.TeamSID,
			"error", err)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
