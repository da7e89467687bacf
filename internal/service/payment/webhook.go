package payment

import (
	"context"
	"errors"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/repository"
	"go.uber.org/zap"
)

// StripeEvent is the subset of a Stripe event the receiver acts on.
type StripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// MercadoPagoEvent is the subset of a Mercado Pago notification the receiver
// acts on.
type MercadoPagoEvent struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Metadata struct {
			BookingID string `json:"bookingId"`
		} `json:"metadata"`
	} `json:"data"`
}

// HandleStripeEvent reconciles local payment and booking state from an
// already signature-verified Stripe event. Unknown event types are logged and
// dropped without error.
func (s *PaymentService) HandleStripeEvent(ctx context.Context, event StripeEvent) error {
	switch event.Type {
	case "payment_intent.succeeded":
		return s.reconcile(ctx, domain.GatewayStripe, event.Data.Object.ID,
			domain.PaymentStatusSucceeded, event.Data.Object.Metadata["bookingId"])
	case "payment_intent.payment_failed":
		return s.reconcile(ctx, domain.GatewayStripe, event.Data.Object.ID,
			domain.PaymentStatusFailed, "")
	case "charge.refunded":
		return s.reconcile(ctx, domain.GatewayStripe, event.Data.Object.PaymentIntent,
			domain.PaymentStatusRefunded, "")
	default:
		s.logger.Info("unhandled stripe event type", zap.String("type", event.Type))
		return nil
	}
}

// HandleMercadoPagoEvent reconciles state from a verified Mercado Pago
// notification. Only payment created/updated actions carry state changes.
func (s *PaymentService) HandleMercadoPagoEvent(ctx context.Context, event MercadoPagoEvent) error {
	if event.Type != "payment" {
		s.logger.Info("unhandled mercadopago event type", zap.String("type", event.Type))
		return nil
	}
	if event.Action != "payment.created" && event.Action != "payment.updated" {
		return nil
	}

	switch event.Data.Status {
	case "approved":
		return s.reconcile(ctx, domain.GatewayMercadoPago, event.Data.ID,
			domain.PaymentStatusSucceeded, event.Data.Metadata.BookingID)
	case "rejected", "cancelled":
		return s.reconcile(ctx, domain.GatewayMercadoPago, event.Data.ID,
			domain.PaymentStatusFailed, "")
	default:
		s.logger.Info("unhandled mercadopago payment status", zap.String("status", event.Data.Status))
		return nil
	}
}

// reconcile applies a webhook outcome to the payment record and, for
// successes that name a booking, confirms the booking. A transaction id with
// no local payment is logged and dropped; the sender may outrun intent
// creation and will retry.
func (s *PaymentService) reconcile(ctx context.Context, gw domain.PaymentGateway, transactionID string, status domain.PaymentStatus, bookingID string) error {
	if transactionID == "" {
		s.logger.Warn("webhook event without transaction id", zap.String("gateway", string(gw)))
		return nil
	}

	updated, err := s.payments.UpdateStatus(ctx, gw, transactionID, status, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("webhook for unknown transaction",
				zap.String("gateway", string(gw)), zap.String("transaction_id", transactionID))
			return nil
		}
		return err
	}

	if status == domain.PaymentStatusSucceeded && bookingID != "" {
		if _, err := s.bookings.ConfirmFromPayment(ctx, bookingID, string(gw)); err != nil {
			s.logger.Error("payment settled but booking confirmation failed",
				zap.String("booking_id", bookingID),
				zap.String("transaction_id", transactionID),
				zap.Error(err))
			return err
		}
	}

	s.publish(ctx, "payment_"+string(status), updated)
	return nil
}
