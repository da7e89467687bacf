package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByTransaction(ctx context.Context, gateway domain.PaymentGateway, transactionID string) (*domain.Payment, error)
	GetLatestByBooking(ctx context.Context, bookingID string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, gateway domain.PaymentGateway, transactionID string, status domain.PaymentStatus, method string) (*domain.Payment, error)
}

const paymentColumns = `id, booking_id, gateway, transaction_id, amount_cents, currency, status, payment_method, metadata, created_at, updated_at`

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	metadata, err := json.Marshal(payment.Metadata)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, `INSERT INTO payments (id, booking_id, gateway, transaction_id, amount_cents, currency, status, payment_method, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		payment.ID, payment.BookingID, payment.Gateway, payment.TransactionID,
		payment.AmountCents, payment.Currency, payment.Status, payment.PaymentMethod, metadata).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	return scanPayment(row)
}

func (r *PGPaymentRepository) GetByTransaction(ctx context.Context, gateway domain.PaymentGateway, transactionID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway=$1 AND transaction_id=$2`, gateway, transactionID)
	return scanPayment(row)
}

func (r *PGPaymentRepository) GetLatestByBooking(ctx context.Context, bookingID string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at DESC LIMIT 1`, bookingID)
	return scanPayment(row)
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, gateway domain.PaymentGateway, transactionID string, status domain.PaymentStatus, method string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `UPDATE payments
		SET status=$1,
		    payment_method = CASE WHEN $2 <> '' THEN $2 ELSE payment_method END,
		    updated_at = now()
		WHERE gateway=$3 AND transaction_id=$4
		RETURNING `+paymentColumns, status, method, gateway, transactionID)
	return scanPayment(row)
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var p domain.Payment
	var metadata []byte
	err := row.Scan(&p.ID, &p.BookingID, &p.Gateway, &p.TransactionID, &p.AmountCents,
		&p.Currency, &p.Status, &p.PaymentMethod, &metadata, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
