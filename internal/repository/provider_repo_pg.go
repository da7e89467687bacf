package repository

import (
	"context"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProviderRepository interface {
	ListAvailable(ctx context.Context) ([]domain.Provider, error)
}

type PGProviderRepository struct {
	db *pgxpool.Pool
}

func NewProviderRepository(db *pgxpool.Pool) ProviderRepository {
	return &PGProviderRepository{db: db}
}

func (r *PGProviderRepository) ListAvailable(ctx context.Context) ([]domain.Provider, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, latitude, longitude, service_radius_km, rating, available, created_at, updated_at FROM providers WHERE available ORDER BY rating DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := make([]domain.Provider, 0)
	for rows.Next() {
		var p domain.Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.ServiceRadiusKM,
			&p.Rating, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

var _ ProviderRepository = (*PGProviderRepository)(nil)
