package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"custclean/pkg/kafka"
)

// Metrics counts publish and consume outcomes. The zero value is ready to use.
type Metrics struct {
	messagesPublished       atomic.Int64
	messagesPublishedFailed atomic.Int64
	publishDuration         atomic.Int64

	messagesConsumed       atomic.Int64
	messagesConsumedFailed atomic.Int64
	consumeDuration        atomic.Int64
}

type Snapshot struct {
	MessagesPublished       int64
	MessagesPublishedFailed int64
	AvgPublishDuration      time.Duration

	MessagesConsumed       int64
	MessagesConsumedFailed int64
	AvgConsumeDuration     time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		MessagesPublished:       m.messagesPublished.Load(),
		MessagesPublishedFailed: m.messagesPublishedFailed.Load(),
		MessagesConsumed:        m.messagesConsumed.Load(),
		MessagesConsumedFailed:  m.messagesConsumedFailed.Load(),
	}
	if calls := s.MessagesPublished + s.MessagesPublishedFailed; calls > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDuration.Load() / calls)
	}
	if calls := s.MessagesConsumed + s.MessagesConsumedFailed; calls > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeDuration.Load() / calls)
	}
	return s
}

// LogValues flattens the snapshot into key/value pairs for the logger.
func (s Snapshot) LogValues() []any {
	return []any{
		"messages_published", s.MessagesPublished,
		"messages_published_failed", s.MessagesPublishedFailed,
		"avg_publish_duration", s.AvgPublishDuration,
		"messages_consumed", s.MessagesConsumed,
		"messages_consumed_failed", s.MessagesConsumedFailed,
		"avg_consume_duration", s.AvgConsumeDuration,
	}
}

// ProducerMiddleware counts every message of a batch.
func (m *Metrics) ProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msgs []kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msgs)

		n := int64(len(msgs))
		m.publishDuration.Add(int64(time.Since(start)) * n)
		if err != nil {
			m.messagesPublishedFailed.Add(n)
		} else {
			m.messagesPublished.Add(n)
		}
		return err
	}
}

func (m *Metrics) ConsumerMiddleware() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		m.consumeDuration.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesConsumedFailed.Add(1)
		} else {
			m.messagesConsumed.Add(1)
		}
		return err
	}
}
