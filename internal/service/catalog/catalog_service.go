package catalog

import (
	"context"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/repository"
)

type CatalogUseCase interface {
	List(ctx context.Context) ([]domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
}

type Cache interface {
	GetServices(ctx context.Context) ([]domain.Service, error)
	SetServices(ctx context.Context, services []domain.Service) error
}

type CatalogService struct {
	repo  repository.ServiceRepository
	cache Cache
}

func NewCatalogService(repo repository.ServiceRepository, cache Cache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Service, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetServices(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	services, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetServices(ctx, services)
	}
	return services, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	return s.repo.GetByID(ctx, id)
}

var _ CatalogUseCase = (*CatalogService)(nil)
