package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dukex/flowmodel/pkg/events"
	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/otelhelper"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/readiness"
	"github.com/dukex/flowmodel/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
)

// FunctionModels implements the editing, lifecycle and validation use cases of function models.
type FunctionModels struct {
	base

	readiness          readiness.Options
	defaultEnvironment string
}

// NewFunctionModels creates a new function model service.
func NewFunctionModels(p persistence.Persistence, opts Options) *FunctionModels {
	return &FunctionModels{
		base:               newBase(p, opts, "function_models"),
		readiness:          opts.Readiness,
		defaultEnvironment: opts.DefaultEnvironment,
	}
}

// CreateModelRequest contains the fields of a new draft model.
type CreateModelRequest struct {
	Name        string         `json:"name"         validate:"required,max=200"`
	Description string         `json:"description"  validate:"max=1000"`
	Owner       string         `json:"owner"        validate:"required"`
	Editors     []string       `json:"editors"`
	Viewers     []string       `json:"viewers"`
	IsPublic    bool           `json:"is_public"`
	Metadata    map[string]any `json:"metadata"`
	AgentConfig map[string]any `json:"agent_config"`
}

// Create stores a new draft model.
func (s *FunctionModels) Create(ctx context.Context, req CreateModelRequest) (*models.FunctionModel, error) {
	const op = "FunctionModels.Create"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelNameKey, req.Name))
	defer span.End()

	model, err := models.NewFunctionModel(req.Name, req.Description, req.Owner)
	if err != nil {
		return nil, fail(span, op, err)
	}

	model.Permissions.Editors = slices.Clone(req.Editors)
	model.Permissions.Viewers = slices.Clone(req.Viewers)
	model.Permissions.IsPublic = req.IsPublic

	if req.Metadata != nil {
		if err := model.ReplaceMetadata(req.Metadata); err != nil {
			return nil, fail(span, op, err)
		}
	}

	if req.AgentConfig != nil {
		if err := model.ReplaceAgentConfig(req.AgentConfig); err != nil {
			return nil, fail(span, op, err)
		}
	}

	if err := s.persistence.ModelRepository().Save(ctx, model); err != nil {
		return nil, fail(span, op, err)
	}

	span.SetAttributes(attribute.String(otelhelper.ModelIDKey, model.ID))

	event := events.ModelCreated{
		BaseEvent: events.NewBaseEvent(events.ModelCreatedEvent, model.ID),
		Name:      model.Name,
		Owner:     model.Permissions.Owner,
	}
	event.Actor = model.Permissions.Owner
	s.publish(ctx, model.ID, event)

	s.logger.InfoContext(ctx, "Function model created", "model_id", model.ID, "name", model.Name)

	return model, nil
}

// FetchByID returns a model; soft-deleted models are reported as not found.
func (s *FunctionModels) FetchByID(ctx context.Context, id string) (*models.FunctionModel, error) {
	const op = "FunctionModels.FetchByID"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, id))
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return nil, fail(span, op, err)
	}

	return model, nil
}

// ListModelsRequest contains options for listing models.
type ListModelsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	Owner          string
	Status         string
	IncludeDeleted bool

	// Sorting
	SortBy    string
	SortOrder string
}

// ListModelsResponse contains the result of listing models.
type ListModelsResponse struct {
	Models      []*models.FunctionModel `json:"models"`
	TotalCount  int64                   `json:"total_count"`
	HasNextPage bool                    `json:"has_next_page"`
}

// List retrieves models with filtering, sorting, and pagination.
func (s *FunctionModels) List(ctx context.Context, req ListModelsRequest) (*ListModelsResponse, error) {
	const op = "FunctionModels.List"

	ctx, span := s.startSpan(ctx, op)
	defer span.End()

	opts := persistence.ListModelsOptions{
		Limit:          req.Limit,
		Offset:         req.Offset,
		Owner:          req.Owner,
		IncludeDeleted: req.IncludeDeleted,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	}

	if req.Status != "" {
		status, err := models.ParseModelStatus(req.Status)
		if err != nil {
			return nil, fail(span, op, fmt.Errorf("%w: %w", ErrInvalidStatus, err))
		}

		opts.Status = &status
	}

	result, err := s.persistence.ModelRepository().List(ctx, opts)
	if err != nil {
		// Map persistence validation errors to service validation errors
		if persistence.IsInvalidSortField(err) {
			return nil, fail(span, op, fmt.Errorf("%w: %w", ErrInvalidSortField, err))
		}

		return nil, fail(span, op, err)
	}

	return &ListModelsResponse{
		Models:      result.Models,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// UpdateDetailsRequest changes model-level fields; nil fields are left untouched.
type UpdateDetailsRequest struct {
	Name        *string        `json:"name,omitempty"         validate:"omitempty,max=200"`
	Description *string        `json:"description,omitempty"  validate:"omitempty,max=1000"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	AgentConfig map[string]any `json:"agent_config,omitempty"`
}

// UpdateDetails renames or re-describes a model and replaces its free-form bags.
func (s *FunctionModels) UpdateDetails(ctx context.Context, id string, req UpdateDetailsRequest) (*models.FunctionModel, error) {
	return s.mutate(ctx, "FunctionModels.UpdateDetails", id, func(model *models.FunctionModel) error {
		if req.Name != nil {
			if err := model.Rename(*req.Name); err != nil {
				return err
			}
		}

		if req.Description != nil {
			if err := model.UpdateDescription(*req.Description); err != nil {
				return err
			}
		}

		if req.Metadata != nil {
			if err := model.ReplaceMetadata(req.Metadata); err != nil {
				return err
			}
		}

		if req.AgentConfig != nil {
			return model.ReplaceAgentConfig(req.AgentConfig)
		}

		return nil
	})
}

// Publish validates the graph and, when it has no errors, publishes a new version.
// Graph errors are returned as a *GraphInvalidError carrying the report.
func (s *FunctionModels) Publish(ctx context.Context, id string) (*models.FunctionModel, error) {
	const op = "FunctionModels.Publish"

	unlock := s.locks.lock(id)
	defer unlock()

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, id))
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return nil, fail(span, op, err)
	}

	report := validation.ValidateModel(model)
	s.publishGraphValidated(ctx, model.ID, report)

	if !report.IsValid {
		return nil, fail(span, op, &GraphInvalidError{Report: report})
	}

	if err := model.Publish(); err != nil {
		return nil, fail(span, op, err)
	}

	if err := s.persistence.ModelRepository().Save(ctx, model); err != nil {
		return nil, fail(span, op, err)
	}

	s.publish(ctx, model.ID, events.ModelPublished{
		BaseEvent: events.NewBaseEvent(events.ModelPublishedEvent, model.ID),
		Version:   model.Version,
		Warnings:  report.Warnings,
	})

	s.logger.InfoContext(ctx, "Function model published",
		"model_id", model.ID,
		"version", model.Version,
		"warnings", len(report.Warnings))

	return model, nil
}

// Archive makes a model read-only.
func (s *FunctionModels) Archive(ctx context.Context, id string) (*models.FunctionModel, error) {
	model, err := s.mutate(ctx, "FunctionModels.Archive", id, func(model *models.FunctionModel) error {
		return model.Archive()
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, model.ID, events.ModelArchived{
		BaseEvent: events.NewBaseEvent(events.ModelArchivedEvent, model.ID),
	})

	return model, nil
}

// SoftDelete tombstones a model. The record is kept and hidden from default queries.
func (s *FunctionModels) SoftDelete(ctx context.Context, id, actor string) (*models.FunctionModel, error) {
	if actor == "" {
		return nil, classify("FunctionModels.SoftDelete", ErrEmptyActor)
	}

	model, err := s.mutate(ctx, "FunctionModels.SoftDelete", id, func(model *models.FunctionModel) error {
		return model.SoftDelete(actor)
	})
	if err != nil {
		return nil, err
	}

	event := events.ModelDeleted{
		BaseEvent: events.NewBaseEvent(events.ModelDeletedEvent, model.ID),
		DeletedBy: actor,
	}
	event.Actor = actor
	s.publish(ctx, model.ID, event)

	return model, nil
}

// Duplicate stores a new draft carrying the source model's metadata, agent
// configuration and permissions. Nodes are not copied.
func (s *FunctionModels) Duplicate(ctx context.Context, id, name string) (*models.FunctionModel, error) {
	const op = "FunctionModels.Duplicate"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, id))
	defer span.End()

	source, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return nil, fail(span, op, err)
	}

	duplicate, err := source.Duplicate(name)
	if err != nil {
		return nil, fail(span, op, err)
	}

	if err := s.persistence.ModelRepository().Save(ctx, duplicate); err != nil {
		return nil, fail(span, op, err)
	}

	s.publish(ctx, duplicate.ID, events.ModelCreated{
		BaseEvent:      events.NewBaseEvent(events.ModelCreatedEvent, duplicate.ID),
		Name:           duplicate.Name,
		Owner:          duplicate.Permissions.Owner,
		DuplicatedFrom: source.ID,
	})

	return duplicate, nil
}

// ContainerNodeRequest describes a new io or stage node.
type ContainerNodeRequest struct {
	Kind             string              `json:"kind"                        validate:"required,oneof=io stage"`
	Name             string              `json:"name"                        validate:"required,max=200"`
	Description      string              `json:"description"                 validate:"max=1000"`
	Direction        string              `json:"direction,omitempty"         validate:"omitempty,oneof=input output"`
	Position         models.Position     `json:"position"`
	ExecutionMode    string              `json:"execution_mode,omitempty"`
	Dependencies     []string            `json:"dependencies,omitempty"`
	Metadata         map[string]any      `json:"metadata,omitempty"`
	VisualProperties map[string]any      `json:"visual_properties,omitempty"`
	Payload          *models.NodePayload `json:"payload,omitempty"`
}

// AddContainerNode adds an io or stage node to a draft model.
func (s *FunctionModels) AddContainerNode(ctx context.Context, modelID string, req ContainerNodeRequest) (*models.Node, error) {
	var created *models.Node

	_, err := s.mutate(ctx, "FunctionModels.AddContainerNode", modelID, func(model *models.FunctionModel) error {
		kind, err := models.ParseNodeKind(req.Kind)
		if err != nil {
			return err
		}

		var node *models.Node

		if kind == models.NodeKindIO {
			node, err = models.NewIONode(model.ID, req.Name, models.IODirection(req.Direction), req.Position)
		} else {
			node, err = models.NewContainerNode(model.ID, kind, req.Name, req.Position)
		}

		if err != nil {
			return err
		}

		if err := applyCommonFields(node, req.Description, req.ExecutionMode, req.Metadata, req.VisualProperties, req.Payload); err != nil {
			return err
		}

		if err := model.AddContainerNode(node); err != nil {
			return err
		}

		for _, dependency := range req.Dependencies {
			if err := model.AddDependency(node.ID, dependency); err != nil {
				return err
			}
		}

		created = node

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ActionNodeRequest describes a new action node attached to a container.
type ActionNodeRequest struct {
	ParentID       string                       `json:"parent_id"                validate:"required"`
	Kind           string                       `json:"kind"                     validate:"required,oneof=tether knowledge-base function-model-container"`
	Name           string                       `json:"name"                     validate:"required,max=200"`
	Description    string                       `json:"description"              validate:"max=1000"`
	ExecutionOrder int                          `json:"execution_order"          validate:"gte=1,lte=10000"`
	Priority       *int                         `json:"priority,omitempty"       validate:"omitempty,gte=1,lte=10"`
	RetryPolicy    *models.RetryPolicy          `json:"retry_policy,omitempty"`
	RACI           *models.RACI                 `json:"raci,omitempty"`
	Resources      *models.ResourceRequirements `json:"resources,omitempty"`
	ExecutionMode  string                       `json:"execution_mode,omitempty"`
	Dependencies   []string                     `json:"dependencies,omitempty"`
	Metadata       map[string]any               `json:"metadata,omitempty"`
	Payload        *models.NodePayload          `json:"payload,omitempty"`
}

// AddActionNode adds an action node under an existing container of a draft model.
func (s *FunctionModels) AddActionNode(ctx context.Context, modelID string, req ActionNodeRequest) (*models.Node, error) {
	var created *models.Node

	_, err := s.mutate(ctx, "FunctionModels.AddActionNode", modelID, func(model *models.FunctionModel) error {
		kind, err := models.ParseNodeKind(req.Kind)
		if err != nil {
			return err
		}

		node, err := models.NewActionNode(model.ID, req.ParentID, kind, req.Name, req.ExecutionOrder)
		if err != nil {
			return err
		}

		if err := applyCommonFields(node, req.Description, req.ExecutionMode, req.Metadata, nil, req.Payload); err != nil {
			return err
		}

		if err := applyActionFields(node, nil, req.Priority, req.RetryPolicy, req.RACI, req.Resources); err != nil {
			return err
		}

		if err := model.AddActionNode(node); err != nil {
			return err
		}

		for _, dependency := range req.Dependencies {
			if err := model.AddDependency(node.ID, dependency); err != nil {
				return err
			}
		}

		created = node

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateNodeRequest changes node fields; nil fields are left untouched. Action
// fields are rejected on container nodes.
type UpdateNodeRequest struct {
	Name             *string                      `json:"name,omitempty"              validate:"omitempty,max=200"`
	Description      *string                      `json:"description,omitempty"       validate:"omitempty,max=1000"`
	Position         *models.Position             `json:"position,omitempty"`
	ExecutionMode    *string                      `json:"execution_mode,omitempty"`
	Metadata         map[string]any               `json:"metadata,omitempty"`
	VisualProperties map[string]any               `json:"visual_properties,omitempty"`
	Payload          *models.NodePayload          `json:"payload,omitempty"`
	ExecutionOrder   *int                         `json:"execution_order,omitempty"   validate:"omitempty,gte=1,lte=10000"`
	Priority         *int                         `json:"priority,omitempty"          validate:"omitempty,gte=1,lte=10"`
	RetryPolicy      *models.RetryPolicy          `json:"retry_policy,omitempty"`
	RACI             *models.RACI                 `json:"raci,omitempty"`
	Resources        *models.ResourceRequirements `json:"resources,omitempty"`
}

// UpdateNode applies the request to a copy of the node and swaps it in, so a
// rejected change leaves the stored node untouched.
func (s *FunctionModels) UpdateNode(ctx context.Context, modelID, nodeID string, req UpdateNodeRequest) (*models.Node, error) {
	var updated *models.Node

	_, err := s.mutate(ctx, "FunctionModels.UpdateNode", modelID, func(model *models.FunctionModel) error {
		existing, ok := model.Node(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrNodeNotFound, nodeID)
		}

		node := existing.Clone()

		if req.Name != nil {
			if err := node.Rename(*req.Name); err != nil {
				return err
			}
		}

		if req.Description != nil {
			if err := node.UpdateDescription(*req.Description); err != nil {
				return err
			}
		}

		if req.Position != nil {
			if err := node.MoveTo(req.Position.X, req.Position.Y); err != nil {
				return err
			}
		}

		mode := ""
		if req.ExecutionMode != nil {
			mode = *req.ExecutionMode
		}

		if err := applyCommonFields(node, "", mode, req.Metadata, req.VisualProperties, req.Payload); err != nil {
			return err
		}

		if err := applyActionFields(node, req.ExecutionOrder, req.Priority, req.RetryPolicy, req.RACI, req.Resources); err != nil {
			return err
		}

		if err := model.UpdateNode(node); err != nil {
			return err
		}

		updated = node

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// RemoveNode deletes a node and strips it from other nodes' dependencies.
func (s *FunctionModels) RemoveNode(ctx context.Context, modelID, nodeID string) error {
	_, err := s.mutate(ctx, "FunctionModels.RemoveNode", modelID, func(model *models.FunctionModel) error {
		return model.RemoveNode(nodeID)
	}, attribute.String(otelhelper.NodeIDKey, nodeID))

	return err
}

// AddDependency records that nodeID requires dependencyID.
func (s *FunctionModels) AddDependency(ctx context.Context, modelID, nodeID, dependencyID string) (*models.Node, error) {
	return s.mutateNode(ctx, "FunctionModels.AddDependency", modelID, nodeID, func(model *models.FunctionModel) error {
		return model.AddDependency(nodeID, dependencyID)
	})
}

// RemoveDependency drops a dependency edge.
func (s *FunctionModels) RemoveDependency(ctx context.Context, modelID, nodeID, dependencyID string) (*models.Node, error) {
	return s.mutateNode(ctx, "FunctionModels.RemoveDependency", modelID, nodeID, func(model *models.FunctionModel) error {
		return model.RemoveDependency(nodeID, dependencyID)
	})
}

// TransitionNode moves a node through the structural lifecycle.
func (s *FunctionModels) TransitionNode(ctx context.Context, modelID, nodeID, status string) (*models.Node, error) {
	return s.mutateNode(ctx, "FunctionModels.TransitionNode", modelID, nodeID, func(model *models.FunctionModel) error {
		next, err := models.ParseNodeStatus(status)
		if err != nil {
			return err
		}

		return model.TransitionNode(nodeID, next)
	})
}

// TransitionAction moves an action node through the execution lifecycle.
func (s *FunctionModels) TransitionAction(ctx context.Context, modelID, nodeID, status string) (*models.Node, error) {
	return s.mutateNode(ctx, "FunctionModels.TransitionAction", modelID, nodeID, func(model *models.FunctionModel) error {
		next, err := models.ParseActionStatus(status)
		if err != nil {
			return err
		}

		return model.TransitionAction(nodeID, next)
	})
}

// ValidateGraph runs every graph validator over a stored model and reports the outcome.
func (s *FunctionModels) ValidateGraph(ctx context.Context, id string) (validation.GraphReport, error) {
	const op = "FunctionModels.ValidateGraph"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, id))
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return validation.GraphReport{}, fail(span, op, err)
	}

	report := validation.ValidateModel(model)
	s.publishGraphValidated(ctx, model.ID, report)

	return report, nil
}

// ValidateRawGraph validates caller-supplied nodes and edges without touching persistence.
func (s *FunctionModels) ValidateRawGraph(ctx context.Context, nodes []*models.Node, edges []models.Edge) validation.GraphReport {
	_, span := s.startSpan(ctx, "FunctionModels.ValidateRawGraph", attribute.Int("flowmodel.graph.nodes", len(nodes)))
	defer span.End()

	return validation.ValidateGraph(nodes, edges)
}

// CheckReadiness runs the composite readiness check against the configured
// policy. An empty environment falls back to the default one.
func (s *FunctionModels) CheckReadiness(ctx context.Context, id string, ectx models.ExecutionContext) (readiness.Report, error) {
	const op = "FunctionModels.CheckReadiness"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, id))
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return readiness.Report{}, fail(span, op, err)
	}

	ectx.ModelID = model.ID
	ectx.Environment = cmp.Or(ectx.Environment, s.defaultEnvironment)

	report := readiness.Check(model, ectx, s.readiness)

	event := events.ReadinessEvaluated{
		BaseEvent:   events.NewBaseEvent(events.ReadinessEvaluatedEvent, model.ID),
		Environment: ectx.Environment,
		CanExecute:  report.CanExecute,
		Errors:      report.Errors,
		Warnings:    report.Warnings,
		Totals:      report.Totals,
	}
	event.Actor = ectx.RequestedBy
	s.publish(ctx, model.ID, event)

	s.logger.DebugContext(ctx, "Readiness evaluated",
		"model_id", model.ID,
		"environment", ectx.Environment,
		"can_execute", report.CanExecute)

	return report, nil
}

// NodeAccess resolves what the requester node may do with the target node's context.
func (s *FunctionModels) NodeAccess(ctx context.Context, modelID, requester, target string) (models.ContextAccess, error) {
	const op = "FunctionModels.NodeAccess"

	ctx, span := s.startSpan(ctx, op, attribute.String(otelhelper.ModelIDKey, modelID))
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, modelID, false)
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	for _, id := range []string{requester, target} {
		if !model.HasNode(id) {
			return models.ContextAccess{}, fail(span, op, fmt.Errorf("%w: %s", models.ErrNodeNotFound, id))
		}
	}

	hierarchy, err := model.Hierarchy()
	if err != nil {
		return models.ContextAccess{}, fail(span, op, err)
	}

	return hierarchy.Access(requester, target), nil
}

func (s *FunctionModels) publishGraphValidated(ctx context.Context, modelID string, report validation.GraphReport) {
	s.publish(ctx, modelID, events.GraphValidated{
		BaseEvent: events.NewBaseEvent(events.GraphValidatedEvent, modelID),
		IsValid:   report.IsValid,
		Errors:    report.Errors,
		Warnings:  report.Warnings,
	})
}

// mutate loads a model, applies fn and saves the result while holding the model's lock.
func (s *FunctionModels) mutate(ctx context.Context, op, id string, fn func(*models.FunctionModel) error, attrs ...attribute.KeyValue) (*models.FunctionModel, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	ctx, span := s.startSpan(ctx, op, append(attrs, attribute.String(otelhelper.ModelIDKey, id))...)
	defer span.End()

	model, err := s.persistence.ModelRepository().GetByID(ctx, id, false)
	if err != nil {
		return nil, fail(span, op, err)
	}

	if err := fn(model); err != nil {
		return nil, fail(span, op, err)
	}

	if err := s.persistence.ModelRepository().Save(ctx, model); err != nil {
		return nil, fail(span, op, err)
	}

	span.SetAttributes(attribute.String(otelhelper.ModelStatusKey, string(model.Status)))

	return model, nil
}

func (s *FunctionModels) mutateNode(ctx context.Context, op, modelID, nodeID string, fn func(*models.FunctionModel) error) (*models.Node, error) {
	model, err := s.mutate(ctx, op, modelID, fn, attribute.String(otelhelper.NodeIDKey, nodeID))
	if err != nil {
		return nil, err
	}

	node, _ := model.Node(nodeID)

	return node, nil
}

func applyCommonFields(node *models.Node, description, mode string, metadata, visual map[string]any, payload *models.NodePayload) error {
	if description != "" {
		if err := node.UpdateDescription(description); err != nil {
			return err
		}
	}

	if mode != "" {
		if err := node.SetExecutionMode(models.ExecutionMode(mode)); err != nil {
			return err
		}
	}

	if metadata != nil {
		node.ReplaceMetadata(metadata)
	}

	if visual != nil {
		node.ReplaceVisualProperties(visual)
	}

	if payload != nil {
		return node.SetPayload(*payload)
	}

	return nil
}

func applyActionFields(node *models.Node, order, priority *int, policy *models.RetryPolicy, raci *models.RACI, resources *models.ResourceRequirements) error {
	if order != nil {
		if err := node.SetExecutionOrder(*order); err != nil {
			return err
		}
	}

	if priority != nil {
		if err := node.SetPriority(*priority); err != nil {
			return err
		}
	}

	if policy != nil {
		if err := node.SetRetryPolicy(*policy); err != nil {
			return err
		}
	}

	if raci != nil {
		if err := node.AssignRACI(*raci); err != nil {
			return err
		}
	}

	if resources != nil {
		return node.SetResources(*resources)
	}

	return nil
}
