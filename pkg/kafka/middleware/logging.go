package kafka_middleware

import (
	"context"
	"time"

	"custclean/pkg/kafka"
	"custclean/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msgs []kafka.Message, next kafka.PublishFunc) error {
		start := time.Now()
		err := next(ctx, msgs)

		attrs := []any{
			"topic", msgs[0].Topic,
			"messages", len(msgs),
			"correlation_id", msgs[0].GetCorrelationID(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to publish kafka messages", append(attrs, "error", err)...)
			return err
		}
		log.Debug("Published kafka messages", attrs...)
		return nil
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("Kafka message handler failed", append(attrs, "error", err)...)
			return err
		}
		log.Info("Processed kafka message", attrs...)
		return nil
	}
}
