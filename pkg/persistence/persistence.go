// Package persistence provides the data storage abstraction for function models and cross-feature links.
package persistence

import (
	"context"

	"github.com/dukex/flowmodel/pkg/models"
)

type Persistence interface {
	ModelRepository() ModelRepository
	LinkRepository() LinkRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

// ModelRepository stores function models together with their nodes.
type ModelRepository interface {
	// Save inserts or replaces the model and its full node set.
	Save(ctx context.Context, model *models.FunctionModel) error
	// GetByID returns ErrModelNotFound for unknown or soft-deleted models unless includeDeleted is set.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*models.FunctionModel, error)
	List(ctx context.Context, opts ListModelsOptions) (*ModelListResult, error)
	// Delete physically removes a model.
	Delete(ctx context.Context, id string) error
}

// LinkRepository stores cross-feature links.
type LinkRepository interface {
	Save(ctx context.Context, link *models.CrossFeatureLink) error
	GetByID(ctx context.Context, id string) (*models.CrossFeatureLink, error)
	// ListByEntity returns links where the entity is either the source or the target.
	ListByEntity(ctx context.Context, feature models.FeatureType, entityID string) ([]*models.CrossFeatureLink, error)
	Delete(ctx context.Context, id string) error
}

// ListModelsOptions filters and paginates model listings.
type ListModelsOptions struct {
	Limit          int
	Offset         int
	Owner          string
	Status         *models.ModelStatus
	IncludeDeleted bool
	SortBy         string // created_at, updated_at or name
	SortOrder      string // asc or desc
}

// ModelListResult is one page of a model listing.
type ModelListResult struct {
	Models      []*models.FunctionModel `json:"models"`
	TotalCount  int64                   `json:"total_count"`
	HasNextPage bool                    `json:"has_next_page"`
}
