package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/gateway"
	"github.com/doltservices/doltbook/internal/kafka"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBookingNotPayable = errors.New("booking is not payable")
	ErrNotRefundable     = errors.New("payment cannot be refunded")
)

type PaymentUseCase interface {
	CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error)
	ConfirmPayment(ctx context.Context, gw domain.PaymentGateway, transactionID, method string) (*domain.Payment, error)
	CapturePayPal(ctx context.Context, orderID, userID string) (*domain.Payment, error)
	RefundPayment(ctx context.Context, paymentID string) (*domain.Payment, error)
	GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error)
}

// Bookings is the slice of the booking lifecycle the payment layer drives.
type Bookings interface {
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ConfirmFromPayment(ctx context.Context, id, method string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateIntentInput struct {
	BookingID string                `json:"booking_id"`
	Gateway   domain.PaymentGateway `json:"gateway"`
}

type IntentResult struct {
	Payment      *domain.Payment
	ClientSecret string
	ApprovalURL  string
}

type PaymentService struct {
	payments     repository.PaymentRepository
	bookings     Bookings
	gateways     *gateway.Registry
	paypal       *gateway.PayPalClient
	producer     Producer
	logger       *zap.Logger
	paymentTopic string
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings Bookings,
	gateways *gateway.Registry,
	paypal *gateway.PayPalClient,
	producer Producer,
	logger *zap.Logger,
	paymentTopic string,
) *PaymentService {
	return &PaymentService{
		payments:     payments,
		bookings:     bookings,
		gateways:     gateways,
		paypal:       paypal,
		producer:     producer,
		logger:       logger,
		paymentTopic: paymentTopic,
	}
}

func (s *PaymentService) CreateIntent(ctx context.Context, input CreateIntentInput) (*IntentResult, error) {
	if input.BookingID == "" {
		return nil, errors.New("booking id is required")
	}
	if !domain.ValidGateway(input.Gateway) {
		return nil, fmt.Errorf("%w: %s", gateway.ErrUnsupportedGateway, input.Gateway)
	}

	booking, err := s.bookings.GetBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending || booking.PaymentState != domain.PaymentStateUnpaid {
		return nil, ErrBookingNotPayable
	}

	gw, err := s.gateways.Get(input.Gateway)
	if err != nil {
		return nil, err
	}

	intent, err := gw.CreateIntent(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("create intent on %s: %w", input.Gateway, err)
	}

	payment := &domain.Payment{
		ID:            uuid.NewString(),
		BookingID:     booking.ID,
		Gateway:       input.Gateway,
		TransactionID: intent.TransactionID,
		AmountCents:   booking.AmountCents,
		Currency:      booking.Currency,
		Status:        domain.PaymentStatusPending,
		Metadata:      map[string]string{"bookingId": booking.ID},
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.publish(ctx, "payment_intent_created", payment)
	return &IntentResult{Payment: payment, ClientSecret: intent.ClientSecret, ApprovalURL: intent.ApprovalURL}, nil
}

// ConfirmPayment settles a payment attempt and confirms its booking. It is
// idempotent on the transaction id: a repeat confirm of a succeeded payment
// returns the existing record.
func (s *PaymentService) ConfirmPayment(ctx context.Context, gw domain.PaymentGateway, transactionID, method string) (*domain.Payment, error) {
	payment, err := s.payments.GetByTransaction(ctx, gw, transactionID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusSucceeded {
		return payment, nil
	}
	if payment.Status != domain.PaymentStatusPending && payment.Status != domain.PaymentStatusProcessing {
		return nil, fmt.Errorf("payment %s is %s, cannot confirm", payment.ID, payment.Status)
	}

	updated, err := s.payments.UpdateStatus(ctx, gw, transactionID, domain.PaymentStatusSucceeded, method)
	if err != nil {
		return nil, err
	}

	if _, err := s.bookings.ConfirmFromPayment(ctx, updated.BookingID, method); err != nil {
		// Payment is settled but the booking did not confirm; the transaction
		// id is the reconciliation key for the retry.
		s.logger.Error("payment settled but booking confirmation failed",
			zap.String("booking_id", updated.BookingID),
			zap.String("transaction_id", transactionID),
			zap.Error(err))
		return nil, fmt.Errorf("confirm booking %s: %w", updated.BookingID, err)
	}

	s.publish(ctx, "payment_succeeded", updated)
	return updated, nil
}

// CapturePayPal runs the capture-then-confirm sequence keyed by the gateway
// order id. Both halves tolerate retries, so a partial failure is recovered
// by calling again with the same order id.
func (s *PaymentService) CapturePayPal(ctx context.Context, orderID, userID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByTransaction(ctx, domain.GatewayPayPal, orderID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusSucceeded {
		return payment, nil
	}

	if err := s.paypal.CaptureOrder(ctx, orderID, userID); err != nil {
		s.publish(ctx, "payment_failed", payment)
		return nil, err
	}

	return s.ConfirmPayment(ctx, domain.GatewayPayPal, orderID, "paypal")
}

func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusSucceeded {
		return nil, ErrNotRefundable
	}

	updated, err := s.payments.UpdateStatus(ctx, payment.Gateway, payment.TransactionID, domain.PaymentStatusRefunded, "")
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "payment_refunded", updated)
	return updated, nil
}

func (s *PaymentService) GetPaymentByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	return s.payments.GetLatestByBooking(ctx, bookingID)
}

func (s *PaymentService) publish(ctx context.Context, eventType string, payment *domain.Payment) {
	if s.producer == nil || s.paymentTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     payment.BookingID,
		Status:        string(payment.Status),
		AmountCents:   payment.AmountCents,
		Currency:      payment.Currency,
		Gateway:       string(payment.Gateway),
		TransactionID: payment.TransactionID,
		At:            time.Now(),
	}
	if err := s.producer.Publish(ctx, s.paymentTopic, payment.BookingID, event); err != nil {
		s.logger.Warn("failed to publish payment event",
			zap.String("type", eventType), zap.String("payment_id", payment.ID), zap.Error(err))
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
