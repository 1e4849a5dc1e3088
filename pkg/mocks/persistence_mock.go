// Package mocks provides testify mocks of the persistence and event bus interfaces.
package mocks

import (
	"context"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockModelRepository is a mock implementation of persistence.ModelRepository interface.
type MockModelRepository struct {
	mock.Mock
}

func (m *MockModelRepository) Save(ctx context.Context, model *models.FunctionModel) error {
	args := m.Called(ctx, model)

	return args.Error(0)
}

func (m *MockModelRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.FunctionModel, error) {
	args := m.Called(ctx, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.FunctionModel), args.Error(1)
}

func (m *MockModelRepository) List(ctx context.Context, opts persistence.ListModelsOptions) (*persistence.ModelListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.ModelListResult), args.Error(1)
}

func (m *MockModelRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockLinkRepository is a mock implementation of persistence.LinkRepository interface.
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Save(ctx context.Context, link *models.CrossFeatureLink) error {
	args := m.Called(ctx, link)

	return args.Error(0)
}

func (m *MockLinkRepository) GetByID(ctx context.Context, id string) (*models.CrossFeatureLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CrossFeatureLink), args.Error(1)
}

func (m *MockLinkRepository) ListByEntity(ctx context.Context, feature models.FeatureType, entityID string) ([]*models.CrossFeatureLink, error) {
	args := m.Called(ctx, feature, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.CrossFeatureLink), args.Error(1)
}

func (m *MockLinkRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock

	modelRepo *MockModelRepository
	linkRepo  *MockLinkRepository
}

// NewMockPersistence creates a new MockPersistence with all mock repositories.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		modelRepo: &MockModelRepository{},
		linkRepo:  &MockLinkRepository{},
	}
}

// GetMockModelRepository returns the underlying mock model repository for setting up expectations.
func (m *MockPersistence) GetMockModelRepository() *MockModelRepository {
	return m.modelRepo
}

// GetMockLinkRepository returns the underlying mock link repository for setting up expectations.
func (m *MockPersistence) GetMockLinkRepository() *MockLinkRepository {
	return m.linkRepo
}

func (m *MockPersistence) ModelRepository() persistence.ModelRepository {
	return m.modelRepo
}

func (m *MockPersistence) LinkRepository() persistence.LinkRepository {
	return m.linkRepo
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
