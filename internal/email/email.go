package email

import (
	"context"

	"github.com/doltservices/doltbook/internal/kafka"
	"go.uber.org/zap"
)

// Sender delivers booking notifications. The transport is a logged stub; the
// worker feeds it from the notifications topic.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(_ context.Context, event kafka.BookingEvent) error {
	s.logger.Info("sending booking notification",
		zap.String("type", event.Type),
		zap.String("booking_id", event.BookingID),
		zap.String("user_id", event.UserID),
		zap.String("status", event.Status))
	return nil
}
