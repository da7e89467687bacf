package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/geo"
	"github.com/doltservices/doltbook/internal/kafka"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	ListProviderBookings(ctx context.Context, providerID string) ([]domain.Booking, error)
	AcceptBooking(ctx context.Context, id, providerID string) (*domain.Booking, error)
	RejectBooking(ctx context.Context, id string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	StartBooking(ctx context.Context, id string) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*domain.Booking, error)
	ConfirmFromPayment(ctx context.Context, id, method string) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

// Catalog resolves service ids; prices are snapshotted from it at creation.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	UserID        string    `json:"user_id"`
	ServiceID     string    `json:"service_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Address       string    `json:"address"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Notes         string    `json:"notes"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	catalog            Catalog
	geocoder           geo.Geocoder
	producer           Producer
	logger             *zap.Logger
	bookingTopic       string
	notificationsTopic string
	pendingTTL         time.Duration
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	catalog Catalog,
	geocoder geo.Geocoder,
	producer Producer,
	logger *zap.Logger,
	bookingTopic string,
	pendingTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		catalog:      catalog,
		geocoder:     geocoder,
		producer:     producer,
		logger:       logger,
		bookingTopic: bookingTopic,
		pendingTTL:   pendingTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.UserID == "" {
		return nil, errors.New("user id is required")
	}
	if input.ServiceID == "" {
		return nil, errors.New("service id is required")
	}
	if input.ScheduledDate.IsZero() {
		return nil, errors.New("scheduled date is required")
	}
	if input.Address == "" && (input.Latitude == nil || input.Longitude == nil) {
		return nil, errors.New("address or coordinates are required")
	}

	service, err := s.catalog.GetByID(ctx, input.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("resolve service %s: %w", input.ServiceID, err)
	}

	lat, lon := input.Latitude, input.Longitude
	address := input.Address
	if lat == nil || lon == nil {
		// Device coordinates absent: geocode the entered address. Failure
		// aborts before anything is persisted.
		location, err := s.geocoder.Geocode(ctx, input.Address)
		if err != nil {
			return nil, fmt.Errorf("geocode address: %w", err)
		}
		lat = &location.Coordinates.Latitude
		lon = &location.Coordinates.Longitude
		address = location.Address
	}

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		ServiceID:     service.ID,
		Status:        domain.BookingStatusPending,
		PaymentState:  domain.PaymentStateUnpaid,
		ScheduledDate: input.ScheduledDate,
		Address:       address,
		Latitude:      lat,
		Longitude:     lon,
		Notes:         input.Notes,
		AmountCents:   service.BasePriceCents,
		Currency:      service.Currency,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) ListProviderBookings(ctx context.Context, providerID string) ([]domain.Booking, error) {
	return s.bookings.ListByProvider(ctx, providerID)
}

func (s *BookingService) AcceptBooking(ctx context.Context, id, providerID string) (*domain.Booking, error) {
	if providerID == "" {
		return nil, errors.New("provider id is required")
	}

	updated, err := s.bookings.AssignProvider(ctx, id, providerID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_confirmed", updated)
	return updated, nil
}

func (s *BookingService) RejectBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}
	if current.Status != domain.BookingStatusPending {
		return nil, repository.ErrInvalidTransition
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

func (s *BookingService) StartBooking(ctx context.Context, id string) (*domain.Booking, error) {
	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusInProgress)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_started", updated)
	return updated, nil
}

func (s *BookingService) CompleteBooking(ctx context.Context, id string) (*domain.Booking, error) {
	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCompleted)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_completed", updated)
	return updated, nil
}

// ConfirmFromPayment is the payment layer's path into the lifecycle. A repeat
// call for an already paid booking is a no-op success so retries after
// partial failures stay safe.
func (s *BookingService) ConfirmFromPayment(ctx context.Context, id, method string) (*domain.Booking, error) {
	updated, err := s.bookings.MarkPaid(ctx, id, method)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			current, getErr := s.bookings.GetByID(ctx, id)
			if getErr == nil && current.PaymentState == domain.PaymentStatePaid {
				return current, nil
			}
		}
		return nil, err
	}
	s.publish(ctx, "booking_confirmed", updated)
	return updated, nil
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	deadline := time.Now().Add(-s.pendingTTL)
	expired, err := s.bookings.ExpirePendingBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, "booking_cancelled", &expired[i])
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ServiceID:   booking.ServiceID,
		Status:      string(booking.Status),
		AmountCents: booking.AmountCents,
		Currency:    booking.Currency,
		At:          time.Now(),
	}
	if booking.ProviderID != nil {
		event.ProviderID = *booking.ProviderID
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType), zap.String("booking_id", booking.ID), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			s.logger.Warn("failed to publish notification event",
				zap.String("type", eventType), zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
