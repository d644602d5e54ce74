package kafka

import (
	"bytes"
	"context"
	"errors"
	"testing"

	kafka_config "custclean/pkg/kafka/config"
	"custclean/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *kafka_config.Config {
	return &kafka_config.Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  1,
		ProducerBatchTimeout: kafka_config.DefaultProducerBatchTimeout,
		ProducerBatchSize:    kafka_config.DefaultProducerBatchSize,
		ProducerRequireAcks:  -1,
		ProducerCompression:  "none",
	}
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Config{Output: buf, Level: logger.DEBUG})
}

func TestMessageBuilder_Build(t *testing.T) {
	msg, err := NewMessage().
		WithKey("CUST-1").
		WithValue(map[string]any{"state": "CALIFORNIA"}).
		WithEventType(EventCustomerCleaned).
		WithCorrelationID("run-1").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "CUST-1", msg.Key)
	assert.JSONEq(t, `{"state":"CALIFORNIA"}`, string(msg.Value))
	assert.Equal(t, EventCustomerCleaned, msg.GetEventType())
	assert.Equal(t, "run-1", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Error(t, err)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	assert.Equal(t, 0, msg.GetRetryCount())

	for range 12 {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"transient wrapper", NewTransientError("save run", errors.New("boom")), ErrorTypeTransient},
		{"permanent wrapper", NewPermanentError("decode", errors.New("bad json")), ErrorTypePermanent},
		{"network message", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"context deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"anything else", errors.New("duplicate column"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("mongo", errors.New("down"))

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestProducer_PublishBatchValidation(t *testing.T) {
	var buf bytes.Buffer
	producer, err := NewProducer(testConfig(), "customers.cleaned", "", testLogger(&buf))
	require.NoError(t, err)
	defer producer.Close()

	err = producer.PublishBatch(context.Background(), []Message{{Key: "", Value: []byte("x")}})
	assert.ErrorIs(t, err, ErrInvalidMessage)

	assert.ErrorIs(t, producer.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, producer.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
}

func TestProducer_MiddlewareSeesValidMessages(t *testing.T) {
	var buf bytes.Buffer
	producer, err := NewProducer(testConfig(), "customers.cleaned", "", testLogger(&buf))
	require.NoError(t, err)
	defer producer.Close()

	var order []string
	var seen []Message
	producer.Use(func(ctx context.Context, msgs []Message, next PublishFunc) error {
		order = append(order, "outer")
		return next(ctx, msgs)
	})
	producer.Use(func(ctx context.Context, msgs []Message, next PublishFunc) error {
		order = append(order, "inner")
		seen = msgs
		return nil
	})

	err = producer.PublishBatch(context.Background(), []Message{
		{Key: "a", Value: []byte("1")},
		{Key: "", Value: []byte("2")},
		{Key: "c", Value: []byte("3")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "inner"}, order)
	require.Len(t, seen, 2)
	assert.Equal(t, "customers.cleaned", seen[0].Topic)
	assert.Contains(t, buf.String(), "Skipping messages without key or value")
}

func TestProducer_Closed(t *testing.T) {
	var buf bytes.Buffer
	producer, err := NewProducer(testConfig(), "customers.cleaned", "", testLogger(&buf))
	require.NoError(t, err)
	require.NoError(t, producer.Close())

	err = producer.PublishBatch(context.Background(), []Message{{Key: "a", Value: []byte("1")}})
	assert.ErrorIs(t, err, ErrProducerClosed)
	assert.NoError(t, producer.Close())
}

func TestNewProducer_RequiresTopic(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewProducer(testConfig(), "", "", testLogger(&buf))
	assert.Error(t, err)
}

func TestConsumer_ProcessMessageRetriesTransient(t *testing.T) {
	var buf bytes.Buffer
	c := &Consumer{maxRetries: 3, log: testLogger(&buf)}

	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("mongo unavailable", errors.New("server selection error"))
		}
		return nil
	}

	err := c.processMessage(context.Background(), handler, Message{Headers: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_ProcessMessageStopsOnPermanent(t *testing.T) {
	var buf bytes.Buffer
	c := &Consumer{maxRetries: 3, log: testLogger(&buf)}

	calls := 0
	handler := func(ctx context.Context, msg Message) error {
		calls++
		return NewPermanentError("decode raw table", errors.New("unexpected EOF"))
	}

	err := c.processMessage(context.Background(), handler, Message{Headers: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestConsumer_ProcessMessageGivesUpAfterMaxRetries(t *testing.T) {
	var buf bytes.Buffer
	c := &Consumer{maxRetries: 2, log: testLogger(&buf)}

	calls := 0
	var seen []int
	handler := func(ctx context.Context, msg Message) error {
		calls++
		seen = append(seen, msg.GetRetryCount())
		return NewTransientError("publish", errors.New("timeout"))
	}

	err := c.processMessage(context.Background(), handler, Message{Headers: map[string]string{}})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, ErrorTypeTransient, ClassifyError(err))
}
