// Package models defines the function model domain: nodes, the model aggregate and cross-feature links.
package models

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Node is the smallest structural unit of a process graph. All five variants
// share this shape; Kind selects which Payload field is populated and whether
// Action is set.
type Node struct {
	ID               string            `json:"id"                          validate:"required"`
	ModelID          string            `json:"model_id"                    validate:"required"`
	Kind             NodeKind          `json:"kind"                        validate:"required"`
	Name             string            `json:"name"                        validate:"required,max=200"`
	Description      string            `json:"description,omitempty"       validate:"max=1000"`
	Position         Position          `json:"position"`
	Dependencies     []string          `json:"dependencies"`
	ExecutionMode    ExecutionMode     `json:"execution_mode"`
	Status           NodeStatus        `json:"status"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
	VisualProperties map[string]any    `json:"visual_properties,omitempty"`
	Payload          NodePayload       `json:"payload"`
	Action           *ActionAttributes `json:"action,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ActionAttributes are carried only by action kinds.
type ActionAttributes struct {
	ParentID       string               `json:"parent_id"       validate:"required"`
	ExecutionOrder int                  `json:"execution_order"`
	Priority       int                  `json:"priority"        validate:"gte=1,lte=10"`
	RetryPolicy    RetryPolicy          `json:"retry_policy"`
	RACI           RACI                 `json:"raci"`
	Resources      ResourceRequirements `json:"resources"`
	Status         ActionStatus         `json:"status"`
	Attempts       int                  `json:"attempts"`
}

// NewContainerNode creates an io or stage node in draft status.
func NewContainerNode(modelID string, kind NodeKind, name string, position Position) (*Node, error) {
	if !kind.IsContainer() {
		return nil, fmt.Errorf("%w: %q is not a container kind", ErrInvalidNodeKind, kind)
	}

	return newNode(modelID, kind, name, position)
}

// NewIONode creates a boundary node facing the given direction.
func NewIONode(modelID, name string, direction IODirection, position Position) (*Node, error) {
	if !direction.IsValid() {
		return nil, fmt.Errorf("%w: unknown io direction %q", ErrInvalidNodeKind, direction)
	}

	node, err := NewContainerNode(modelID, NodeKindIO, name, position)
	if err != nil {
		return nil, err
	}

	node.Payload.IO.Direction = direction

	return node, nil
}

// NewActionNode creates an action node attached to parentID with the given execution order.
func NewActionNode(modelID, parentID string, kind NodeKind, name string, order int) (*Node, error) {
	if !kind.IsAction() {
		return nil, fmt.Errorf("%w: %q is not an action kind", ErrInvalidNodeKind, kind)
	}

	if err := ValidateID(parentID); err != nil {
		return nil, fmt.Errorf("parent container: %w", err)
	}

	if order > MaxExecutionOrder {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidExecutionOrder, order, MaxExecutionOrder)
	}

	node, err := newNode(modelID, kind, name, Position{})
	if err != nil {
		return nil, err
	}

	node.Action = &ActionAttributes{
		ParentID:       parentID,
		ExecutionOrder: order,
		Priority:       DefaultPriority,
		RetryPolicy:    DefaultRetryPolicy(),
		Status:         ActionStatusDraft,
	}

	return node, nil
}

func newNode(modelID string, kind NodeKind, name string, position Position) (*Node, error) {
	if err := ValidateID(modelID); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	cleanName, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	if _, err := NewPosition(position.X, position.Y); err != nil {
		return nil, err
	}

	now := now()

	return &Node{
		ID:               NewID(),
		ModelID:          modelID,
		Kind:             kind,
		Name:             cleanName,
		Position:         position,
		Dependencies:     []string{},
		ExecutionMode:    ExecutionModeSequential,
		Status:           NodeStatusDraft,
		Metadata:         map[string]any{},
		VisualProperties: map[string]any{},
		Payload:          defaultPayload(kind),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func (n *Node) touch() {
	n.UpdatedAt = now()
}

// Rename sets a new trimmed name.
func (n *Node) Rename(name string) error {
	cleanName, err := normalizeName(name)
	if err != nil {
		return err
	}

	n.Name = cleanName
	n.touch()

	return nil
}

// UpdateDescription replaces the description; an empty description clears it.
func (n *Node) UpdateDescription(description string) error {
	clean, err := normalizeDescription(description)
	if err != nil {
		return err
	}

	n.Description = clean
	n.touch()

	return nil
}

// MoveTo repositions the node on the canvas.
func (n *Node) MoveTo(x, y float64) error {
	position, err := NewPosition(x, y)
	if err != nil {
		return err
	}

	n.Position = position
	n.touch()

	return nil
}

// AddDependency records that this node requires dependencyID.
func (n *Node) AddDependency(dependencyID string) error {
	if err := ValidateID(dependencyID); err != nil {
		return fmt.Errorf("dependency: %w", err)
	}

	if dependencyID == n.ID {
		return fmt.Errorf("%w: %s", ErrSelfDependency, n.ID)
	}

	if slices.Contains(n.Dependencies, dependencyID) {
		return fmt.Errorf("%w: %s already depends on %s", ErrDuplicateDependency, n.ID, dependencyID)
	}

	n.Dependencies = append(n.Dependencies, dependencyID)
	n.touch()

	return nil
}

// RemoveDependency drops a recorded dependency.
func (n *Node) RemoveDependency(dependencyID string) error {
	idx := slices.Index(n.Dependencies, dependencyID)
	if idx < 0 {
		return fmt.Errorf("%w: %s does not depend on %s", ErrDependencyNotFound, n.ID, dependencyID)
	}

	n.Dependencies = slices.Delete(n.Dependencies, idx, idx+1)
	n.touch()

	return nil
}

// DependsOn reports whether dependencyID is a recorded dependency.
func (n *Node) DependsOn(dependencyID string) bool {
	return slices.Contains(n.Dependencies, dependencyID)
}

func (n *Node) SetExecutionMode(mode ExecutionMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidExecutionMode, mode)
	}

	n.ExecutionMode = mode
	n.touch()

	return nil
}

// TransitionTo moves the node through its status table.
func (n *Node) TransitionTo(next NodeStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("%w: node status %q", ErrInvalidStatus, next)
	}

	if !n.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "node", ID: n.ID, From: string(n.Status), To: string(next)}
	}

	n.Status = next
	n.touch()

	return nil
}

// ReplaceMetadata swaps the free-form metadata bag.
func (n *Node) ReplaceMetadata(metadata map[string]any) {
	n.Metadata = cloneMap(metadata)
	n.touch()
}

// ReplaceVisualProperties swaps the canvas rendering hints.
func (n *Node) ReplaceVisualProperties(properties map[string]any) {
	n.VisualProperties = cloneMap(properties)
	n.touch()
}

// Capabilities returns the fixed capability row of the node's kind.
func (n *Node) Capabilities() Capabilities {
	return n.Kind.Capabilities()
}

// IsInput reports whether the node is an input boundary.
func (n *Node) IsInput() bool {
	return n.Kind == NodeKindIO && n.Payload.IO != nil && n.Payload.IO.Direction == IODirectionInput
}

// IsOutput reports whether the node is an output boundary.
func (n *Node) IsOutput() bool {
	return n.Kind == NodeKindIO && n.Payload.IO != nil && n.Payload.IO.Direction == IODirectionOutput
}

// IOConfig returns the boundary configuration of an io node.
func (n *Node) IOConfig() (*IOConfig, error) {
	if n.Kind != NodeKindIO || n.Payload.IO == nil {
		return nil, unsupported("IOConfig", n.Kind)
	}

	return n.Payload.IO, nil
}

// StageConfig returns the processing configuration of a stage node.
func (n *Node) StageConfig() (*StageConfig, error) {
	if n.Kind != NodeKindStage || n.Payload.Stage == nil {
		return nil, unsupported("StageConfig", n.Kind)
	}

	return n.Payload.Stage, nil
}

// TetherConfig returns the connection configuration of a tether node.
func (n *Node) TetherConfig() (*TetherConfig, error) {
	if n.Kind != NodeKindTether || n.Payload.Tether == nil {
		return nil, unsupported("TetherConfig", n.Kind)
	}

	return n.Payload.Tether, nil
}

// KnowledgeBaseConfig returns the source configuration of a knowledge-base node.
func (n *Node) KnowledgeBaseConfig() (*KnowledgeBaseConfig, error) {
	if n.Kind != NodeKindKnowledgeBase || n.Payload.KnowledgeBase == nil {
		return nil, unsupported("KnowledgeBaseConfig", n.Kind)
	}

	return n.Payload.KnowledgeBase, nil
}

// NestedModelConfig returns the nested model reference of a function-model-container node.
func (n *Node) NestedModelConfig() (*NestedModelConfig, error) {
	if n.Kind != NodeKindFunctionModelContainer || n.Payload.NestedModel == nil {
		return nil, unsupported("NestedModelConfig", n.Kind)
	}

	return n.Payload.NestedModel, nil
}

// ActionAttributes returns the action-only attributes.
func (n *Node) ActionAttributes() (*ActionAttributes, error) {
	if !n.Kind.IsAction() || n.Action == nil {
		return nil, unsupported("ActionAttributes", n.Kind)
	}

	return n.Action, nil
}

// SetPayload replaces the variant payload; the populated field must match the node kind.
func (n *Node) SetPayload(payload NodePayload) error {
	if !payload.matches(n.Kind) {
		return unsupported("SetPayload", n.Kind)
	}

	n.Payload = payload
	n.touch()

	return nil
}

// SetExecutionOrder changes the action's position among its container siblings.
func (n *Node) SetExecutionOrder(order int) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if order < 1 || order > MaxExecutionOrder {
		return fmt.Errorf("%w: got %d, want 1-%d", ErrInvalidExecutionOrder, order, MaxExecutionOrder)
	}

	attrs.ExecutionOrder = order
	n.touch()

	return nil
}

// SetPriority changes the action's priority (1-10).
func (n *Node) SetPriority(priority int) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, priority)
	}

	attrs.Priority = priority
	n.touch()

	return nil
}

func (n *Node) SetRetryPolicy(policy RetryPolicy) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if err := policy.Validate(); err != nil {
		return err
	}

	attrs.RetryPolicy = policy
	n.touch()

	return nil
}

func (n *Node) AssignRACI(raci RACI) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if err := raci.Validate(); err != nil {
		return err
	}

	attrs.RACI = raci
	n.touch()

	return nil
}

func (n *Node) SetResources(resources ResourceRequirements) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if err := resources.Validate(); err != nil {
		return err
	}

	attrs.Resources = resources
	n.touch()

	return nil
}

// TransitionAction moves an action through its execution table. Entering
// retrying consumes one attempt of the retry policy; returning to active resets the count.
func (n *Node) TransitionAction(next ActionStatus) error {
	attrs, err := n.ActionAttributes()
	if err != nil {
		return err
	}

	if !next.IsValid() {
		return fmt.Errorf("%w: action status %q", ErrInvalidStatus, next)
	}

	if !attrs.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "action", ID: n.ID, From: string(attrs.Status), To: string(next)}
	}

	switch next {
	case ActionStatusRetrying:
		if attrs.Attempts >= attrs.RetryPolicy.MaxAttempts {
			return fmt.Errorf("%w: %s used %d of %d attempts", ErrRetriesExhausted, n.ID, attrs.Attempts, attrs.RetryPolicy.MaxAttempts)
		}

		attrs.Attempts++
	case ActionStatusActive:
		attrs.Attempts = 0
	}

	attrs.Status = next
	n.touch()

	return nil
}

// Validate runs the shared field rules plus the type-specific rules of the node's kind.
func (n *Node) Validate() ValidationResult {
	result := NewValidationResult()

	if n == nil {
		result.AddError("node is nil")

		return result
	}

	n.validateCommon(&result)

	switch n.Kind {
	case NodeKindIO:
		n.validateIO(&result)
	case NodeKindStage:
		if n.Payload.Stage == nil || n.Payload.Stage.Processing == nil || n.Payload.Stage.Processing.Strategy == "" {
			result.AddWarning("stage node %s has no processing configuration", n.ID)
		}
	case NodeKindTether:
		if n.Payload.Tether == nil || n.Payload.Tether.Connection == nil || n.Payload.Tether.Connection.Endpoint == "" {
			result.AddWarning("tether node %s has no connection configuration", n.ID)
		}
	case NodeKindKnowledgeBase:
		if n.Payload.KnowledgeBase == nil || n.Payload.KnowledgeBase.Source == nil || n.Payload.KnowledgeBase.Source.KnowledgeBaseID == "" {
			result.AddWarning("knowledge-base node %s has no knowledge source configuration", n.ID)
		}
	case NodeKindFunctionModelContainer:
		switch {
		case n.Payload.NestedModel == nil || ValidateID(n.Payload.NestedModel.ModelID) != nil:
			result.AddError("function-model-container node %s must reference a nested model", n.ID)
		case n.Payload.NestedModel.ModelID == n.ModelID:
			result.AddError("function-model-container node %s cannot nest its own model", n.ID)
		}
	}

	return result
}

func (n *Node) validateCommon(result *ValidationResult) {
	if ValidateID(n.ID) != nil {
		result.AddError("node identifier cannot be empty")
	}

	if !n.Kind.IsValid() {
		result.AddError("node %s has invalid kind %q", n.ID, n.Kind)

		return
	}

	if _, err := normalizeName(n.Name); err != nil {
		result.AddError("node %s: %v", n.ID, err)
	}

	if _, err := normalizeDescription(n.Description); err != nil {
		result.AddError("node %s: %v", n.ID, err)
	}

	if !n.Status.IsValid() {
		result.AddError("node %s has invalid status %q", n.ID, n.Status)
	}

	if n.ExecutionMode != "" && !n.ExecutionMode.IsValid() {
		result.AddError("node %s has invalid execution mode %q", n.ID, n.ExecutionMode)
	}

	if slices.Contains(n.Dependencies, n.ID) {
		result.AddError("node %s depends on itself", n.ID)
	}

	if !n.Payload.matches(n.Kind) {
		result.AddError("node %s payload does not match kind %s", n.ID, n.Kind)
	}

	switch {
	case n.Kind.IsAction() && n.Action == nil:
		result.AddError("action node %s has no action attributes", n.ID)
	case n.Kind.IsContainer() && n.Action != nil:
		result.AddError("container node %s cannot carry action attributes", n.ID)
	case n.Action != nil:
		n.validateAction(result)
	}
}

func (n *Node) validateAction(result *ValidationResult) {
	attrs := n.Action

	if ValidateID(attrs.ParentID) != nil {
		result.AddError("action node %s has no parent container", n.ID)
	}

	if attrs.Priority < MinPriority || attrs.Priority > MaxPriority {
		result.AddError("action node %s: %v (got %d)", n.ID, ErrInvalidPriority, attrs.Priority)
	}

	if attrs.ExecutionOrder > MaxExecutionOrder {
		result.AddError("action node %s: %v (got %d, max %d)", n.ID, ErrInvalidExecutionOrder, attrs.ExecutionOrder, MaxExecutionOrder)
	}

	if err := attrs.RetryPolicy.Validate(); err != nil {
		result.AddError("action node %s: %v", n.ID, err)
	}

	if err := attrs.Resources.Validate(); err != nil {
		result.AddError("action node %s: %v", n.ID, err)
	}

	if !attrs.RACI.IsEmpty() {
		if err := attrs.RACI.Validate(); err != nil {
			result.AddError("action node %s: %v", n.ID, err)
		}
	}

	if !attrs.Status.IsValid() {
		result.AddError("action node %s has invalid action status %q", n.ID, attrs.Status)
	}
}

func (n *Node) validateIO(result *ValidationResult) {
	cfg := n.Payload.IO
	if cfg == nil {
		return
	}

	if !cfg.Direction.IsValid() {
		result.AddError("io node %s has invalid direction %q", n.ID, cfg.Direction)

		return
	}

	for name, contract := range map[string]map[string]any{"input": cfg.InputContract, "output": cfg.OutputContract} {
		if len(contract) == 0 {
			continue
		}

		if err := validateContract(contract); err != nil {
			result.AddError("io node %s has an invalid %s contract: %v", n.ID, name, err)
		}
	}

	switch cfg.Direction {
	case IODirectionInput:
		if len(cfg.OutputContract) > 0 {
			result.AddError("input node %s cannot declare an output contract", n.ID)
		}

		if len(n.Dependencies) > 0 {
			result.AddError("input node %s cannot have dependencies", n.ID)
		}
	case IODirectionOutput:
		if len(n.Dependencies) == 0 {
			result.AddWarning("output node %s has no dependencies", n.ID)
		}

		if len(cfg.OutputContract) == 0 {
			result.AddWarning("output node %s has no output contract", n.ID)
		}
	}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	clone := *n
	clone.Dependencies = slices.Clone(n.Dependencies)
	clone.Metadata = cloneMap(n.Metadata)
	clone.VisualProperties = cloneMap(n.VisualProperties)
	clone.Payload = n.Payload.clone()

	if n.Action != nil {
		action := *n.Action
		action.RACI = RACI{
			Responsible: slices.Clone(n.Action.RACI.Responsible),
			Accountable: slices.Clone(n.Action.RACI.Accountable),
			Consulted:   slices.Clone(n.Action.RACI.Consulted),
			Informed:    slices.Clone(n.Action.RACI.Informed),
		}
		clone.Action = &action
	}

	return &clone
}

func (p NodePayload) clone() NodePayload {
	var out NodePayload

	if p.IO != nil {
		io := *p.IO
		io.InputContract = cloneMap(p.IO.InputContract)
		io.OutputContract = cloneMap(p.IO.OutputContract)
		out.IO = &io
	}

	if p.Stage != nil {
		stage := *p.Stage
		if p.Stage.Processing != nil {
			processing := *p.Stage.Processing
			processing.Parameters = cloneMap(p.Stage.Processing.Parameters)
			stage.Processing = &processing
		}
		out.Stage = &stage
	}

	if p.Tether != nil {
		tether := *p.Tether
		if p.Tether.Connection != nil {
			connection := *p.Tether.Connection
			connection.Headers = maps.Clone(p.Tether.Connection.Headers)
			tether.Connection = &connection
		}
		out.Tether = &tether
	}

	if p.KnowledgeBase != nil {
		kb := *p.KnowledgeBase
		if p.KnowledgeBase.Source != nil {
			source := *p.KnowledgeBase.Source
			source.DocumentIDs = slices.Clone(p.KnowledgeBase.Source.DocumentIDs)
			kb.Source = &source
		}
		out.KnowledgeBase = &kb
	}

	if p.NestedModel != nil {
		nested := *p.NestedModel
		nested.ContextMapping = maps.Clone(p.NestedModel.ContextMapping)
		out.NestedModel = &nested
	}

	return out
}

// cloneMap is a shallow copy that never returns nil.
func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	maps.Copy(out, in)

	return out
}
