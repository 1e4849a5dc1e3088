package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
)

const linkColumns = `
			id
		  , source_feature
		  , source_entity_id
		  , source_node_id
		  , target_feature
		  , target_entity_id
		  , target_node_id
		  , link_type
		  , strength
		  , context
		  , created_by
		  , created_at
		  , updated_at
`

// LinkRepository handles cross-feature link database operations.
type LinkRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *sql.DB, logger *slog.Logger) *LinkRepository {
	return &LinkRepository{db: db, logger: logger}
}

func (r *LinkRepository) Save(ctx context.Context, link *models.CrossFeatureLink) error {
	if err := models.ValidateID(link.ID); err != nil {
		return persistence.NewLinkError("Save", link.ID, err)
	}

	contextJSON, err := json.Marshal(link.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal link context: %w", err)
	}

	query := `
		INSERT INTO cross_feature_links (id, source_feature, source_entity_id, source_node_id,
target_feature, target_entity_id, target_node_id, link_type, strength, context, created_by,
created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			link_type = EXCLUDED.link_type,
			strength = EXCLUDED.strength,
			context = EXCLUDED.context,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		link.ID,
		link.Source.Feature,
		link.Source.EntityID,
		link.Source.NodeID,
		link.Target.Feature,
		link.Target.EntityID,
		link.Target.NodeID,
		link.Type,
		link.Strength,
		contextJSON,
		link.CreatedBy,
		link.CreatedAt,
		link.UpdatedAt,
	)
	if err != nil {
		return persistence.NewLinkError("Save", link.ID, err)
	}

	return nil
}

func (r *LinkRepository) GetByID(ctx context.Context, id string) (*models.CrossFeatureLink, error) {
	row := r.db.QueryRowContext(ctx, `SELECT`+linkColumns+`FROM cross_feature_links WHERE id = $1`, id)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewLinkError("GetByID", id, persistence.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("failed to scan link: %w", err)
	}

	return link, nil
}

// ListByEntity returns links touching the entity on either side, oldest first.
func (r *LinkRepository) ListByEntity(ctx context.Context, feature models.FeatureType, entityID string) ([]*models.CrossFeatureLink, error) {
	query := `SELECT` + linkColumns + `FROM cross_feature_links
		WHERE (source_feature = $1 AND source_entity_id = $2)
		   OR (target_feature = $1 AND target_entity_id = $2)
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, feature, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	links := make([]*models.CrossFeatureLink, 0)

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// Delete removes a link; unknown links report ErrLinkNotFound.
func (r *LinkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cross_feature_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewLinkError("Delete", id, persistence.ErrLinkNotFound)
	}

	return nil
}

func scanLink(scanner interface {
	Scan(dest ...any) error
},
) (*models.CrossFeatureLink, error) {
	var (
		link        models.CrossFeatureLink
		contextJSON []byte
	)

	err := scanner.Scan(
		&link.ID,
		&link.Source.Feature,
		&link.Source.EntityID,
		&link.Source.NodeID,
		&link.Target.Feature,
		&link.Target.EntityID,
		&link.Target.NodeID,
		&link.Type,
		&link.Strength,
		&contextJSON,
		&link.CreatedBy,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if contextJSON != nil {
		if err := json.Unmarshal(contextJSON, &link.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal link context: %w", err)
		}
	}

	link.CreatedAt = link.CreatedAt.UTC()
	link.UpdatedAt = link.UpdatedAt.UTC()

	return &link, nil
}
