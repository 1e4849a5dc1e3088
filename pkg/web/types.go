// Package web provides HTTP request and response types for the function model API.
package web

import (
	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/services"
)

// CreateNodeRequest represents the request body for adding a node to a model.
// Container kinds (io, stage) use Direction; action kinds require ParentID and ExecutionOrder.
type CreateNodeRequest struct {
	Kind             string                       `json:"kind"                        validate:"required,oneof=io stage tether knowledge-base function-model-container"`
	Name             string                       `json:"name"                        validate:"required,max=200"`
	Description      string                       `json:"description"                 validate:"max=1000"`
	Direction        string                       `json:"direction,omitempty"         validate:"omitempty,oneof=input output"`
	ParentID         string                       `json:"parent_id,omitempty"`
	ExecutionOrder   int                          `json:"execution_order,omitempty"   validate:"gte=0,lte=10000"`
	Position         models.Position              `json:"position"`
	ExecutionMode    string                       `json:"execution_mode,omitempty"    validate:"omitempty,oneof=sequential parallel conditional"`
	Dependencies     []string                     `json:"dependencies,omitempty"      validate:"dive,required"`
	Metadata         map[string]any               `json:"metadata,omitempty"`
	VisualProperties map[string]any               `json:"visual_properties,omitempty"`
	Payload          *models.NodePayload          `json:"payload,omitempty"`
	Priority         *int                         `json:"priority,omitempty"          validate:"omitempty,gte=1,lte=10"`
	RetryPolicy      *models.RetryPolicy          `json:"retry_policy,omitempty"`
	RACI             *models.RACI                 `json:"raci,omitempty"`
	Resources        *models.ResourceRequirements `json:"resources,omitempty"`
}

// IsAction reports whether the request describes an action node.
func (r CreateNodeRequest) IsAction() bool {
	return models.NodeKind(r.Kind).IsAction()
}

// ContainerRequest converts the body into the container node service request.
func (r CreateNodeRequest) ContainerRequest() services.ContainerNodeRequest {
	return services.ContainerNodeRequest{
		Kind:             r.Kind,
		Name:             r.Name,
		Description:      r.Description,
		Direction:        r.Direction,
		Position:         r.Position,
		ExecutionMode:    r.ExecutionMode,
		Dependencies:     r.Dependencies,
		Metadata:         r.Metadata,
		VisualProperties: r.VisualProperties,
		Payload:          r.Payload,
	}
}

// ActionRequest converts the body into the action node service request.
func (r CreateNodeRequest) ActionRequest() services.ActionNodeRequest {
	return services.ActionNodeRequest{
		ParentID:       r.ParentID,
		Kind:           r.Kind,
		Name:           r.Name,
		Description:    r.Description,
		ExecutionOrder: r.ExecutionOrder,
		Priority:       r.Priority,
		RetryPolicy:    r.RetryPolicy,
		RACI:           r.RACI,
		Resources:      r.Resources,
		ExecutionMode:  r.ExecutionMode,
		Dependencies:   r.Dependencies,
		Metadata:       r.Metadata,
		Payload:        r.Payload,
	}
}

// DuplicateModelRequest names the copy; an empty name derives one from the source.
type DuplicateModelRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// AddDependencyRequest represents the request body for adding a dependency edge.
type AddDependencyRequest struct {
	DependencyID string `json:"dependency_id" validate:"required"`
}

// NodeStatusRequest moves a node through its structural lifecycle (Status) or,
// for action nodes, its execution lifecycle (ActionStatus). Exactly one is required.
type NodeStatusRequest struct {
	Status       string `json:"status,omitempty"        validate:"required_without=ActionStatus,excluded_with=ActionStatus"`
	ActionStatus string `json:"action_status,omitempty" validate:"required_without=Status"`
}

// ValidateGraphRequest carries a raw graph for stateless validation.
type ValidateGraphRequest struct {
	Nodes []*models.Node `json:"nodes"`
	Edges []models.Edge  `json:"edges" validate:"dive"`
}

// UpdateLinkRequest changes a link's weight or context; nil fields are left untouched.
type UpdateLinkRequest struct {
	Strength *float64      `json:"strength,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}
