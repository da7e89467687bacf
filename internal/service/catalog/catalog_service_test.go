package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/doltservices/doltbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetServices(ctx context.Context) ([]domain.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Service), args.Error(1)
}

func (m *MockCache) SetServices(ctx context.Context, services []domain.Service) error {
	args := m.Called(ctx, services)
	return args.Error(0)
}

func TestCatalogService_List_CacheHit(t *testing.T) {
	mockRepo := &MockServiceRepository{}
	mockCache := &MockCache{}
	service := NewCatalogService(mockRepo, mockCache)

	ctx := context.Background()
	cached := []domain.Service{{ID: "svc-1", Title: "Plumbing", BasePriceCents: 2000}}

	mockCache.On("GetServices", ctx).Return(cached, nil).Once()

	services, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, services)

	mockCache.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "List")
}

func TestCatalogService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockServiceRepository{}
	mockCache := &MockCache{}
	service := NewCatalogService(mockRepo, mockCache)

	ctx := context.Background()
	fromDB := []domain.Service{
		{ID: "svc-1", Title: "Plumbing", BasePriceCents: 2000},
		{ID: "svc-2", Title: "Painting", BasePriceCents: 5000},
	}

	mockCache.On("GetServices", ctx).Return(nil, errors.New("cache miss")).Once()
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()
	mockCache.On("SetServices", ctx, fromDB).Return(nil).Once()

	services, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, services)

	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestCatalogService_List_NoCache(t *testing.T) {
	mockRepo := &MockServiceRepository{}
	service := NewCatalogService(mockRepo, nil)

	ctx := context.Background()
	fromDB := []domain.Service{{ID: "svc-1", Title: "Plumbing"}}

	mockRepo.On("List", ctx).Return(fromDB, nil).Once()

	services, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, services)
}

func TestCatalogService_GetByID(t *testing.T) {
	mockRepo := &MockServiceRepository{}
	service := NewCatalogService(mockRepo, &MockCache{})

	ctx := context.Background()
	entry := &domain.Service{ID: "svc-1", Title: "Plumbing"}

	mockRepo.On("GetByID", ctx, "svc-1").Return(entry, nil).Once()

	found, err := service.GetByID(ctx, "svc-1")

	assert.NoError(t, err)
	assert.Equal(t, entry, found)
}
