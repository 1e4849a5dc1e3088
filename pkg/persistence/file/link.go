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

// LinkRepository stores one JSON document per cross-feature link under <root>/links.
type LinkRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(root string) *LinkRepository {
	return &LinkRepository{dir: filepath.Join(root, "links")}
}

func (lr *LinkRepository) Save(_ context.Context, link *models.CrossFeatureLink) error {
	filePath, ok := documentPath(lr.dir, link.ID)
	if !ok {
		return persistence.NewLinkError("Save", link.ID, models.ErrInvalidID)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()

	if err := writeDocument(lr.dir, filePath, link); err != nil {
		return persistence.NewLinkError("Save", link.ID, err)
	}

	return nil
}

func (lr *LinkRepository) GetByID(_ context.Context, id string) (*models.CrossFeatureLink, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	return lr.read(id)
}

func (lr *LinkRepository) read(id string) (*models.CrossFeatureLink, error) {
	filePath, ok := documentPath(lr.dir, id)
	if !ok {
		return nil, persistence.NewLinkError("GetByID", id, persistence.ErrLinkNotFound)
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewLinkError("GetByID", id, persistence.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("failed to fetch link %s: %w", id, err)
	}

	var link models.CrossFeatureLink

	if err := json.Unmarshal(body, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link %s: %w", id, err)
	}

	return &link, nil
}

// ListByEntity scans every link document; links are ordered by creation time.
func (lr *LinkRepository) ListByEntity(_ context.Context, feature models.FeatureType, entityID string) ([]*models.CrossFeatureLink, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	files, err := fs.Glob(os.DirFS(lr.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list link files: %w", err)
	}

	links := make([]*models.CrossFeatureLink, 0)

	for _, file := range files {
		link, err := lr.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if link.Involves(feature, entityID) {
			links = append(links, link)
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		if links[i].CreatedAt.Equal(links[j].CreatedAt) {
			return links[i].ID < links[j].ID
		}

		return links[i].CreatedAt.Before(links[j].CreatedAt)
	})

	return links, nil
}

// Delete removes a link; unknown links report ErrLinkNotFound.
func (lr *LinkRepository) Delete(_ context.Context, id string) error {
	filePath, ok := documentPath(lr.dir, id)
	if !ok {
		return persistence.NewLinkError("Delete", id, persistence.ErrLinkNotFound)
	}

	lr.mu.Lock()
	defer lr.mu.Unlock()

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return persistence.NewLinkError("Delete", id, persistence.ErrLinkNotFound)
		}

		return fmt.Errorf("failed to delete link %s: %w", id, err)
	}

	return nil
}
