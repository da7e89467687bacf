package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Consumer reads booking lifecycle events from a topic as part of a consumer
// group. Payloads are decoded before they reach the handler; a message that
// is not a BookingEvent is logged and skipped rather than poisoning the
// group's offset progress.
type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume delivers decoded booking events to handler until ctx is cancelled
// or handler returns an error.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, BookingEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, ok := c.decode(msg)
		if !ok {
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func (c *Consumer) decode(msg kafka.Message) (BookingEvent, bool) {
	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("skipping malformed booking event",
			zap.Error(err),
			zap.ByteString("key", msg.Key))
		return BookingEvent{}, false
	}
	return event, true
}
