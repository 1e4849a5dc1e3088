package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
)

// ModelRepository stores one JSON document per function model under <root>/models.
type ModelRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewModelRepository creates a new model repository.
func NewModelRepository(root string) *ModelRepository {
	return &ModelRepository{dir: filepath.Join(root, "models")}
}

// List returns paginated and filtered models with in-memory operations.
func (mr *ModelRepository) List(_ context.Context, opts persistence.ListModelsOptions) (*persistence.ModelListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	mr.mu.RLock()
	defer mr.mu.RUnlock()

	all, err := mr.loadAll()
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.FunctionModel, 0, len(all))

	for _, model := range all {
		if !opts.IncludeDeleted && model.IsDeleted() {
			continue
		}

		if opts.Owner != "" && model.Permissions.Owner != opts.Owner {
			continue
		}

		if opts.Status != nil && model.Status != *opts.Status {
			continue
		}

		filtered = append(filtered, model)
	}

	sortModels(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	if opts.Offset >= len(filtered) {
		return &persistence.ModelListResult{
			Models:     make([]*models.FunctionModel, 0),
			TotalCount: totalCount,
		}, nil
	}

	endIdx := min(opts.Offset+opts.Limit, len(filtered))

	return &persistence.ModelListResult{
		Models:      filtered[opts.Offset:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

func (mr *ModelRepository) loadAll() ([]*models.FunctionModel, error) {
	files, err := fs.Glob(os.DirFS(mr.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list model files: %w", err)
	}

	all := make([]*models.FunctionModel, 0, len(files))

	for _, file := range files {
		model, err := mr.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		all = append(all, model)
	}

	return all, nil
}

// sortModels sorts models in-place; ties fall back to the identifier so pages are stable.
func sortModels(list []*models.FunctionModel, sortBy, sortOrder string) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]

		var cmp int

		switch sortBy {
		case "updated_at":
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		case "name":
			cmp = strings.Compare(a.Name, b.Name)
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}

		if cmp == 0 {
			cmp = strings.Compare(a.ID, b.ID)
		}

		if sortOrder == "desc" {
			return cmp > 0
		}

		return cmp < 0
	})
}

// GetByID retrieves a model by its ID from the file system.
func (mr *ModelRepository) GetByID(_ context.Context, id string, includeDeleted bool) (*models.FunctionModel, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	model, err := mr.read(id)
	if err != nil {
		return nil, err
	}

	if model.IsDeleted() && !includeDeleted {
		return nil, persistence.NewModelError("GetByID", id, persistence.ErrModelNotFound)
	}

	return model, nil
}

func (mr *ModelRepository) read(id string) (*models.FunctionModel, error) {
	filePath, ok := documentPath(mr.dir, id)
	if !ok {
		return nil, persistence.NewModelError("GetByID", id, persistence.ErrModelNotFound)
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewModelError("GetByID", id, persistence.ErrModelNotFound)
		}

		return nil, fmt.Errorf("failed to fetch model %s: %w", id, err)
	}

	var model models.FunctionModel

	if err := json.Unmarshal(body, &model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model %s: %w", id, err)
	}

	return &model, nil
}

// Save writes a model to the file system, replacing any previous version.
func (mr *ModelRepository) Save(_ context.Context, model *models.FunctionModel) error {
	filePath, ok := documentPath(mr.dir, model.ID)
	if !ok {
		return persistence.NewModelError("Save", model.ID, models.ErrInvalidID)
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()

	if err := writeDocument(mr.dir, filePath, model); err != nil {
		return persistence.NewModelError("Save", model.ID, err)
	}

	return nil
}

// Delete removes a model document. Deleting an unknown model is not an error.
func (mr *ModelRepository) Delete(_ context.Context, id string) error {
	filePath, ok := documentPath(mr.dir, id)
	if !ok {
		return nil
	}

	mr.mu.Lock()
	defer mr.mu.Unlock()

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete model %s: %w", id, err)
	}

	return nil
}
