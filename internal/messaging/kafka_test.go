package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/giftengine/internal/config"
	"github.com/temcen/giftengine/pkg/models"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testEvent() models.PipelineEvent {
	return models.PipelineEvent{
		ID:   uuid.New(),
		Type: EventGiftEngineRequest,
		Session: models.SessionContext{
			SessionID: "sess-123",
			RequestID: "req-456",
			ClientIP:  "203.0.113.7",
		},
		Mode:      models.ModeProfile,
		Outcome:   "success",
		ItemCount: 5,
		LatencyMs: 1200,
		Timestamp: time.Now(),
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestBuildMessage(t *testing.T) {
	event := testEvent()

	msg, err := BuildMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-123"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.ID.String(), headers["event_id"])
	assert.Equal(t, EventGiftEngineRequest, headers["event_type"])
	assert.Equal(t, "profile", headers["mode"])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "success", decoded["outcome"])
	assert.Equal(t, float64(5), decoded["item_count"])
	session := decoded["session"].(map[string]interface{})
	assert.Equal(t, "req-456", session["request_id"])
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := newKafkaPublisher(writer, DefaultPipelineTopic, testLogger())

	require.NoError(t, publisher.Publish(context.Background(), testEvent()))
	assert.Len(t, writer.messages, 1)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("broker unavailable")}
	publisher := newKafkaPublisher(writer, DefaultPipelineTopic, testLogger())

	err := publisher.Publish(context.Background(), testEvent())
	assert.ErrorContains(t, err, "broker unavailable")
}

func TestNewEventPublisher(t *testing.T) {
	cfg := &config.Config{}

	publisher := NewEventPublisher(cfg, testLogger())
	assert.IsType(t, NopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), testEvent()))

	cfg.Kafka.Brokers = []string{"localhost:9092"}
	publisher = NewEventPublisher(cfg, testLogger())
	assert.IsType(t, &KafkaPublisher{}, publisher)
	assert.NoError(t, publisher.Close())
}
