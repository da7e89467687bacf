package repository

import (
	"context"
	"errors"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository interface {
	List(ctx context.Context) ([]domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

const serviceColumns = `id, title, description, category, base_price_cents, currency, duration_minutes, features, active, created_at, updated_at`

type PGServiceRepository struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) ServiceRepository {
	return &PGServiceRepository{db: db}
}

func (r *PGServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.db.Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE active ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Category, &s.BasePriceCents,
			&s.Currency, &s.DurationMinutes, &s.Features, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *PGServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id=$1`, id)
	var s domain.Service
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Category, &s.BasePriceCents,
		&s.Currency, &s.DurationMinutes, &s.Features, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ ServiceRepository = (*PGServiceRepository)(nil)
