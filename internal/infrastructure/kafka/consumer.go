package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes one delivered message. A nil return acknowledges
// the message (the consumer group offset advances); an error leaves it
// unacknowledged and stops the consumer.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer is a durable subscription over the merged event topic: a named
// consumer group whose committed offset is the subscription checkpoint.
// Acknowledgement is explicit: offsets are committed only after the handler
// succeeds, so a crash mid-handling redelivers the message.
type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:       brokers,
		Topic:         topic,
		GroupID:       groupID,
		MinBytes:      10e3, // 10KB
		MaxBytes:      10e6, // 10MB
		QueueCapacity: 64,   // bounded in-flight buffer
	})
	return &Consumer{reader: reader, log: log}
}

// Consume delivers messages to the handler until the context is cancelled
// (a deliberate stop, returns nil) or something fails. Handler and fetch
// errors are fatal: the message is not acknowledged and the error propagates
// so the hosting process restarts instead of running with a broken or
// partial projection.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("subscription dropped", zap.Error(err))
			return fmt.Errorf("subscription dropped: %w", err)
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.log.Error("message handling failed, stopping without ack",
				zap.Error(err),
				zap.Int64("offset", msg.Offset),
				zap.String("key", string(msg.Key)))
			return err
		}

		// A cancellation that raced the handler must not acknowledge.
		if ctx.Err() != nil {
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to commit offset: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
