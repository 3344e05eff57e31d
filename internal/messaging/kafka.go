package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/pkg/models"
)

const (
	DefaultPipelineTopic   = "gift-engine-events"
	EventGiftEngineRequest = "gift_engine.request"
)

// EventPublisher records pipeline events. Publishing is best effort and must
// never fail a request.
type EventPublisher interface {
	Publish(ctx context.Context, event models.PipelineEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewEventPublisher returns a Kafka publisher, or a no-op publisher when no
// brokers are configured.
func NewEventPublisher(cfg *config.Config, logger *logrus.Logger) EventPublisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka brokers not configured, pipeline events disabled")
		return NopPublisher{}
	}

	topic := cfg.Kafka.Topic
	if topic == "" {
		topic = DefaultPipelineTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by session so a session's events stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.WithError(err).WithField("count", len(messages)).Warn("Failed to deliver pipeline events")
			}
		},
	}

	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.PipelineEvent) error {
	message, err := BuildMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.WithError(err).WithField("event_id", event.ID).Warn("Failed to publish pipeline event")
		return fmt.Errorf("failed to write event to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     event.Type,
		"topic":    p.topic,
	}).Debug("Pipeline event published")

	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}

// BuildMessage encodes an event as a Kafka message keyed by session id.
func BuildMessage(event models.PipelineEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.Session.SessionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "mode", Value: []byte(event.Mode)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.PipelineEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
