package repository

import (
	"context"
	"errors"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, to domain.BookingStatus) (*domain.Booking, error)
	AssignProvider(ctx context.Context, id, providerID string) (*domain.Booking, error)
	MarkPaid(ctx context.Context, id, method string) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

const bookingColumns = `id, user_id, provider_id, service_id, status, scheduled_date, completed_date, address, latitude, longitude, notes, amount_cents, currency, payment_method, payment_state, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	booking.PaymentState = domain.PaymentStateUnpaid
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, user_id, provider_id, service_id, status, scheduled_date, address, latitude, longitude, notes, amount_cents, currency, payment_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`,
		booking.ID, booking.UserID, booking.ProviderID, booking.ServiceID, booking.Status,
		booking.ScheduledDate, booking.Address, booking.Latitude, booking.Longitude,
		booking.Notes, booking.AmountCents, booking.Currency, booking.PaymentState).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByProvider(ctx context.Context, providerID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE provider_id=$1 ORDER BY created_at`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// UpdateStatus moves a booking to the given status with a conditional update:
// the row changes only if its current status is one the lifecycle allows to
// reach the target from. A lost race or an illegal transition both leave the
// row untouched.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, to domain.BookingStatus) (*domain.Booking, error) {
	allowed := statusStrings(domain.AllowedFrom(to))
	if len(allowed) == 0 {
		return nil, ErrInvalidTransition
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1,
		    completed_date = CASE WHEN $1 = 'completed' THEN now() ELSE completed_date END,
		    updated_at = now()
		WHERE id=$2 AND status = ANY($3)
		RETURNING `+bookingColumns, to, id, allowed)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) AssignProvider(ctx context.Context, id, providerID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET provider_id=$1, status=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+bookingColumns,
		providerID, domain.BookingStatusConfirmed, id, domain.BookingStatusPending)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, err
	}
	return booking, nil
}

// MarkPaid is the payment layer's entry into the lifecycle: record the
// payment outcome and, for a pending booking, confirm it in the same
// statement. A booking the provider already accepted stays confirmed and
// only picks up the payment fields.
func (r *PGBookingRepository) MarkPaid(ctx context.Context, id, method string) (*domain.Booking, error) {
	payable := statusStrings([]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed})

	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, payment_state=$2, payment_method=$3, updated_at=now()
		WHERE id=$4 AND status = ANY($5)
		RETURNING `+bookingColumns,
		domain.BookingStatusConfirmed, domain.PaymentStatePaid, method, id, payable)

	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, r.classifyMiss(ctx, id)
		}
		return nil, err
	}
	return booking, nil
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings
		SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

// classifyMiss distinguishes a missing booking from one whose current status
// rejected the conditional update.
func (r *PGBookingRepository) classifyMiss(ctx context.Context, id string) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.ProviderID, &b.ServiceID, &b.Status,
		&b.ScheduledDate, &b.CompletedDate, &b.Address, &b.Latitude, &b.Longitude,
		&b.Notes, &b.AmountCents, &b.Currency, &b.PaymentMethod, &b.PaymentState,
		&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

var _ BookingRepository = (*PGBookingRepository)(nil)
