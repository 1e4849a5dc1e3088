package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
)

const modelColumns = `
			id
		  , name
		  , description
		  , version
		  , version_count
		  , status
		  , agent_config
		  , metadata
		  , owner
		  , editors
		  , viewers
		  , is_public
		  , created_at
		  , updated_at
		  , published_at
		  , archived_at
		  , deleted_at
		  , deleted_by
`

const notDeleted = `deleted_at IS NULL AND status <> 'deleted'`

// ModelRepository handles function model database operations.
type ModelRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewModelRepository creates a new model repository.
func NewModelRepository(db *sql.DB, logger *slog.Logger) *ModelRepository {
	return &ModelRepository{db: db, logger: logger}
}

// GetByID loads a model and its nodes.
func (r *ModelRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.FunctionModel, error) {
	query := `SELECT` + modelColumns + `FROM function_models WHERE id = $1`
	if !includeDeleted {
		query += ` AND ` + notDeleted
	}

	model, err := r.scanModelBase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewModelError("GetByID", id, persistence.ErrModelNotFound)
		}

		return nil, fmt.Errorf("failed to scan model: %w", err)
	}

	if err := r.loadNodes(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to load model nodes: %w", err)
	}

	return model, nil
}

// List returns a filtered, sorted page of models.
func (r *ModelRepository) List(ctx context.Context, opts persistence.ListModelsOptions) (*persistence.ModelListResult, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)

	if !opts.IncludeDeleted {
		conditions = append(conditions, notDeleted)
	}

	if opts.Owner != "" {
		args = append(args, opts.Owner)
		conditions = append(conditions, fmt.Sprintf("owner = $%d", len(args)))
	}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64

	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM function_models"+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count models: %w", err)
	}

	// SortBy and SortOrder are allowlisted by Normalize.
	order := strings.ToUpper(opts.SortOrder)
	query := fmt.Sprintf(`SELECT%sFROM function_models%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		modelColumns, where, opts.SortBy, order, order, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	page := make([]*models.FunctionModel, 0, opts.Limit)

	for rows.Next() {
		model, err := r.scanModelBase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}

		page = append(page, model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}

	for _, model := range page {
		if err := r.loadNodes(ctx, model); err != nil {
			return nil, fmt.Errorf("failed to load nodes of model %s: %w", model.ID, err)
		}
	}

	return &persistence.ModelListResult{
		Models:      page,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(page)) < totalCount,
	}, nil
}

// Save upserts the model row and replaces its node set in one transaction.
func (r *ModelRepository) Save(ctx context.Context, model *models.FunctionModel) (err error) {
	if err := models.ValidateID(model.ID); err != nil {
		return persistence.NewModelError("Save", model.ID, err)
	}

	agentConfigJSON, err := json.Marshal(model.AgentConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal agent config: %w", err)
	}

	metadataJSON, err := json.Marshal(model.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	editorsJSON, err := json.Marshal(model.Permissions.Editors)
	if err != nil {
		return fmt.Errorf("failed to marshal editors: %w", err)
	}

	viewersJSON, err := json.Marshal(model.Permissions.Viewers)
	if err != nil {
		return fmt.Errorf("failed to marshal viewers: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	modelQuery := `
		INSERT INTO function_models (id, name, description, version, version_count, status,
agent_config, metadata, owner, editors, viewers, is_public, created_at, updated_at,
published_at, archived_at, deleted_at, deleted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			version = EXCLUDED.version,
			version_count = EXCLUDED.version_count,
			status = EXCLUDED.status,
			agent_config = EXCLUDED.agent_config,
			metadata = EXCLUDED.metadata,
			owner = EXCLUDED.owner,
			editors = EXCLUDED.editors,
			viewers = EXCLUDED.viewers,
			is_public = EXCLUDED.is_public,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at,
			archived_at = EXCLUDED.archived_at,
			deleted_at = EXCLUDED.deleted_at,
			deleted_by = EXCLUDED.deleted_by
	`

	_, err = tx.ExecContext(ctx, modelQuery,
		model.ID,
		model.Name,
		model.Description,
		model.Version,
		model.VersionCount,
		model.Status,
		agentConfigJSON,
		metadataJSON,
		model.Permissions.Owner,
		editorsJSON,
		viewersJSON,
		model.Permissions.IsPublic,
		model.CreatedAt,
		model.UpdatedAt,
		model.PublishedAt,
		model.ArchivedAt,
		model.DeletedAt,
		model.DeletedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save model base: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM model_nodes WHERE model_id = $1", model.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing nodes: %w", err)
	}

	err = r.saveNodes(ctx, tx, model)
	if err != nil {
		return fmt.Errorf("failed to save model nodes: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete physically removes a model; its nodes cascade. Unknown models are not an error.
func (r *ModelRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM function_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	return nil
}

func (r *ModelRepository) saveNodes(ctx context.Context, tx *sql.Tx, model *models.FunctionModel) error {
	query := `
		INSERT INTO model_nodes (model_id, id, kind, name, description, position_x, position_y,
dependencies, execution_mode, status, metadata, visual_properties, payload, action,
parent_id, execution_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	for _, node := range model.AllNodes() {
		columns, err := encodeNode(node)
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}

		_, err = tx.ExecContext(ctx, query,
			model.ID,
			node.ID,
			node.Kind,
			node.Name,
			node.Description,
			node.Position.X,
			node.Position.Y,
			columns.dependencies,
			node.ExecutionMode,
			node.Status,
			columns.metadata,
			columns.visualProperties,
			columns.payload,
			columns.action,
			columns.parentID,
			columns.executionOrder,
			node.CreatedAt,
			node.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", node.ID, err)
		}
	}

	return nil
}

type nodeColumns struct {
	dependencies     []byte
	metadata         []byte
	visualProperties []byte
	payload          []byte
	action           []byte
	parentID         sql.NullString
	executionOrder   sql.NullInt64
}

func encodeNode(node *models.Node) (nodeColumns, error) {
	var (
		columns nodeColumns
		err     error
	)

	dependencies := node.Dependencies
	if dependencies == nil {
		dependencies = []string{}
	}

	if columns.dependencies, err = json.Marshal(dependencies); err != nil {
		return columns, fmt.Errorf("failed to marshal dependencies: %w", err)
	}

	if columns.metadata, err = json.Marshal(node.Metadata); err != nil {
		return columns, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if columns.visualProperties, err = json.Marshal(node.VisualProperties); err != nil {
		return columns, fmt.Errorf("failed to marshal visual properties: %w", err)
	}

	if columns.payload, err = json.Marshal(node.Payload); err != nil {
		return columns, fmt.Errorf("failed to marshal payload: %w", err)
	}

	if node.Action != nil {
		if columns.action, err = json.Marshal(node.Action); err != nil {
			return columns, fmt.Errorf("failed to marshal action attributes: %w", err)
		}

		columns.parentID = sql.NullString{String: node.Action.ParentID, Valid: true}
		columns.executionOrder = sql.NullInt64{Int64: int64(node.Action.ExecutionOrder), Valid: true}
	}

	return columns, nil
}

func (r *ModelRepository) loadNodes(ctx context.Context, model *models.FunctionModel) error {
	query := `
		SELECT
			id
		  , model_id
		  , kind
		  , name
		  , description
		  , position_x
		  , position_y
		  , dependencies
		  , execution_mode
		  , status
		  , metadata
		  , visual_properties
		  , payload
		  , action
		  , created_at
		  , updated_at
		FROM model_nodes
		WHERE model_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, model.ID)
	if err != nil {
		return fmt.Errorf("failed to query model nodes: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	model.Nodes = map[string]*models.Node{}
	model.ActionNodes = map[string]*models.Node{}

	for rows.Next() {
		var (
			node                                       models.Node
			dependenciesJSON, metadataJSON, visualJSON []byte
			payloadJSON, actionJSON                    []byte
		)

		err := rows.Scan(
			&node.ID,
			&node.ModelID,
			&node.Kind,
			&node.Name,
			&node.Description,
			&node.Position.X,
			&node.Position.Y,
			&dependenciesJSON,
			&node.ExecutionMode,
			&node.Status,
			&metadataJSON,
			&visualJSON,
			&payloadJSON,
			&actionJSON,
			&node.CreatedAt,
			&node.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}

		err = unmarshalColumns(map[string]columnTarget{
			"dependencies":      {dependenciesJSON, &node.Dependencies},
			"metadata":          {metadataJSON, &node.Metadata},
			"visual properties": {visualJSON, &node.VisualProperties},
			"payload":           {payloadJSON, &node.Payload},
		})
		if err != nil {
			return fmt.Errorf("node %s: %w", node.ID, err)
		}

		if actionJSON != nil {
			node.Action = &models.ActionAttributes{}
			if err := json.Unmarshal(actionJSON, node.Action); err != nil {
				return fmt.Errorf("failed to unmarshal action attributes of node %s: %w", node.ID, err)
			}
		}

		node.CreatedAt = node.CreatedAt.UTC()
		node.UpdatedAt = node.UpdatedAt.UTC()

		if node.Kind.IsAction() {
			model.ActionNodes[node.ID] = &node
		} else {
			model.Nodes[node.ID] = &node
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	return nil
}

func (r *ModelRepository) scanModelBase(scanner interface {
	Scan(dest ...any) error
},
) (*models.FunctionModel, error) {
	var (
		model                                                   models.FunctionModel
		agentConfigJSON, metadataJSON, editorsJSON, viewersJSON []byte
	)

	err := scanner.Scan(
		&model.ID,
		&model.Name,
		&model.Description,
		&model.Version,
		&model.VersionCount,
		&model.Status,
		&agentConfigJSON,
		&metadataJSON,
		&model.Permissions.Owner,
		&editorsJSON,
		&viewersJSON,
		&model.Permissions.IsPublic,
		&model.CreatedAt,
		&model.UpdatedAt,
		&model.PublishedAt,
		&model.ArchivedAt,
		&model.DeletedAt,
		&model.DeletedBy,
	)
	if err != nil {
		return nil, err
	}

	err = unmarshalColumns(map[string]columnTarget{
		"agent config": {agentConfigJSON, &model.AgentConfig},
		"metadata":     {metadataJSON, &model.Metadata},
		"editors":      {editorsJSON, &model.Permissions.Editors},
		"viewers":      {viewersJSON, &model.Permissions.Viewers},
	})
	if err != nil {
		return nil, err
	}

	model.CreatedAt = model.CreatedAt.UTC()
	model.UpdatedAt = model.UpdatedAt.UTC()
	model.PublishedAt = utcPtr(model.PublishedAt)
	model.ArchivedAt = utcPtr(model.ArchivedAt)
	model.DeletedAt = utcPtr(model.DeletedAt)

	return &model, nil
}

type columnTarget struct {
	raw  []byte
	dest any
}

// unmarshalColumns decodes JSONB columns; NULL columns leave their destination untouched.
func unmarshalColumns(columns map[string]columnTarget) error {
	for name, column := range columns {
		if column.raw == nil {
			continue
		}

		if err := json.Unmarshal(column.raw, column.dest); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
	}

	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	utc := t.UTC()

	return &utc
}
