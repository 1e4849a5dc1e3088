package models

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"
)

// FunctionModel is the aggregate owning a process graph: container nodes,
// action nodes attached to them, and the model lifecycle.
type FunctionModel struct {
	ID           string           `json:"id"                     validate:"required"`
	Name         string           `json:"name"                   validate:"required,max=200"`
	Description  string           `json:"description,omitempty"  validate:"max=1000"`
	Version      int              `json:"version"`
	VersionCount int              `json:"version_count"`
	Status       ModelStatus      `json:"status"                 validate:"required"`
	Nodes        map[string]*Node `json:"nodes"`        // Container nodes keyed by ID
	ActionNodes  map[string]*Node `json:"action_nodes"` // Action nodes keyed by ID
	AgentConfig  map[string]any   `json:"agent_config,omitempty"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	Permissions  Permissions      `json:"permissions"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	PublishedAt  *time.Time       `json:"published_at,omitempty"`
	ArchivedAt   *time.Time       `json:"archived_at,omitempty"`
	DeletedAt    *time.Time       `json:"deleted_at,omitempty"`
	DeletedBy    string           `json:"deleted_by,omitempty"`
}

// Permissions controls who may see or edit a model.
type Permissions struct {
	Owner    string   `json:"owner"`
	Editors  []string `json:"editors,omitempty"`
	Viewers  []string `json:"viewers,omitempty"`
	IsPublic bool     `json:"is_public"`
}

// CanEdit reports whether the user may change the model.
func (p Permissions) CanEdit(user string) bool {
	return user != "" && (user == p.Owner || slices.Contains(p.Editors, user))
}

// CanView reports whether the user may read the model.
func (p Permissions) CanView(user string) bool {
	return p.IsPublic || p.CanEdit(user) || (user != "" && slices.Contains(p.Viewers, user))
}

// NewFunctionModel creates an empty draft model.
func NewFunctionModel(name, description, owner string) (*FunctionModel, error) {
	cleanName, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	cleanDescription, err := normalizeDescription(description)
	if err != nil {
		return nil, err
	}

	now := now()

	return &FunctionModel{
		ID:          NewID(),
		Name:        cleanName,
		Description: cleanDescription,
		Version:     0,
		Status:      ModelStatusDraft,
		Nodes:       map[string]*Node{},
		ActionNodes: map[string]*Node{},
		AgentConfig: map[string]any{},
		Metadata:    map[string]any{},
		Permissions: Permissions{Owner: owner},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (m *FunctionModel) touch() {
	m.UpdatedAt = now()
}

// IsDeleted reports whether the model has been soft-deleted.
func (m *FunctionModel) IsDeleted() bool {
	return m.Status == ModelStatusDeleted || m.DeletedAt != nil
}

// IsArchived reports whether the model has been archived.
func (m *FunctionModel) IsArchived() bool {
	return m.Status == ModelStatusArchived || m.ArchivedAt != nil
}

// IsEditable reports whether structural commands are accepted.
func (m *FunctionModel) IsEditable() bool {
	return m.Status == ModelStatusDraft && !m.IsDeleted()
}

func (m *FunctionModel) ensureEditable() error {
	if !m.IsEditable() {
		return fmt.Errorf("%w: model %s is %s", ErrModelNotEditable, m.ID, m.Status)
	}

	return nil
}

// Rename changes the model name; allowed in any non-deleted, non-archived state.
func (m *FunctionModel) Rename(name string) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	cleanName, err := normalizeName(name)
	if err != nil {
		return err
	}

	m.Name = cleanName
	m.touch()

	return nil
}

func (m *FunctionModel) UpdateDescription(description string) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	clean, err := normalizeDescription(description)
	if err != nil {
		return err
	}

	m.Description = clean
	m.touch()

	return nil
}

// ReplaceMetadata swaps the free-form metadata bag.
func (m *FunctionModel) ReplaceMetadata(metadata map[string]any) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	m.Metadata = cloneMap(metadata)
	m.touch()

	return nil
}

// ReplaceAgentConfig swaps the agent configuration.
func (m *FunctionModel) ReplaceAgentConfig(config map[string]any) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	m.AgentConfig = cloneMap(config)
	m.touch()

	return nil
}

func (m *FunctionModel) ensureMetadataEditable() error {
	if m.IsDeleted() || m.IsArchived() {
		return fmt.Errorf("%w: model %s is %s", ErrModelNotEditable, m.ID, m.Status)
	}

	return nil
}

// Node looks up a container or action node by ID.
func (m *FunctionModel) Node(id string) (*Node, bool) {
	if node, ok := m.Nodes[id]; ok {
		return node, true
	}

	node, ok := m.ActionNodes[id]

	return node, ok
}

// HasNode reports whether id is used by any node in the model.
func (m *FunctionModel) HasNode(id string) bool {
	_, ok := m.Node(id)

	return ok
}

// AddContainerNode attaches an io or stage node.
func (m *FunctionModel) AddContainerNode(node *Node) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	if err := m.checkNewNode(node); err != nil {
		return err
	}

	if !node.Kind.IsContainer() {
		return fmt.Errorf("%w: %s is not a container kind", ErrInvalidNodeKind, node.Kind)
	}

	m.ensureMaps()
	m.Nodes[node.ID] = node
	m.touch()

	return nil
}

// AddActionNode attaches an action node; its parent must be an existing container.
func (m *FunctionModel) AddActionNode(node *Node) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	if err := m.checkNewNode(node); err != nil {
		return err
	}

	if err := m.checkAction(node); err != nil {
		return err
	}

	m.ensureMaps()
	m.ActionNodes[node.ID] = node
	m.touch()

	return nil
}

func (m *FunctionModel) checkNewNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrNodeNotFound)
	}

	if err := ValidateID(node.ID); err != nil {
		return err
	}

	if node.ModelID != m.ID {
		return fmt.Errorf("%w: node %s belongs to %s, not %s", ErrModelMismatch, node.ID, node.ModelID, m.ID)
	}

	if m.HasNode(node.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, node.ID)
	}

	if node.DependsOn(node.ID) {
		return fmt.Errorf("%w: %s", ErrSelfDependency, node.ID)
	}

	return nil
}

func (m *FunctionModel) checkAction(node *Node) error {
	attrs, err := node.ActionAttributes()
	if err != nil {
		return err
	}

	if _, ok := m.Nodes[attrs.ParentID]; !ok {
		return fmt.Errorf("%w: %s (action %s)", ErrParentNotFound, attrs.ParentID, node.ID)
	}

	return nil
}

// UpdateNode replaces an existing node with a modified version, re-checking invariants.
func (m *FunctionModel) UpdateNode(node *Node) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrNodeNotFound)
	}

	existing, ok := m.Node(node.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, node.ID)
	}

	if existing.Kind != node.Kind {
		return fmt.Errorf("%w: cannot change kind of %s from %s to %s", ErrInvalidNodeKind, node.ID, existing.Kind, node.Kind)
	}

	if node.ModelID != m.ID {
		return fmt.Errorf("%w: node %s belongs to %s, not %s", ErrModelMismatch, node.ID, node.ModelID, m.ID)
	}

	if node.DependsOn(node.ID) {
		return fmt.Errorf("%w: %s", ErrSelfDependency, node.ID)
	}

	if node.Kind.IsAction() {
		if err := m.checkAction(node); err != nil {
			return err
		}

		m.ActionNodes[node.ID] = node
	} else {
		m.Nodes[node.ID] = node
	}

	m.touch()

	return nil
}

// RemoveNode deletes a node and strips references to it from remaining dependencies.
// A container that still owns actions cannot be removed.
func (m *FunctionModel) RemoveNode(id string) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	node, ok := m.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	if node.Kind.IsContainer() {
		if actions := m.ActionsFor(id); len(actions) > 0 {
			return fmt.Errorf("%w: %s has %d", ErrContainerHasActions, id, len(actions))
		}

		delete(m.Nodes, id)
	} else {
		delete(m.ActionNodes, id)
	}

	for _, other := range m.AllNodes() {
		if other.DependsOn(id) {
			_ = other.RemoveDependency(id)
		}
	}

	m.touch()

	return nil
}

// AddDependency records that nodeID requires dependencyID; both must belong to the model.
func (m *FunctionModel) AddDependency(nodeID, dependencyID string) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	node, ok := m.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	if nodeID != dependencyID && !m.HasNode(dependencyID) {
		return fmt.Errorf("%w: dependency %s", ErrNodeNotFound, dependencyID)
	}

	if err := node.AddDependency(dependencyID); err != nil {
		return err
	}

	m.touch()

	return nil
}

func (m *FunctionModel) RemoveDependency(nodeID, dependencyID string) error {
	if err := m.ensureEditable(); err != nil {
		return err
	}

	node, ok := m.Node(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	if err := node.RemoveDependency(dependencyID); err != nil {
		return err
	}

	m.touch()

	return nil
}

// TransitionNode moves a node through the structural state machine. Status
// changes are accepted on published models; archived and deleted models refuse them.
func (m *FunctionModel) TransitionNode(id string, next NodeStatus) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	node, ok := m.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	if err := node.TransitionTo(next); err != nil {
		return err
	}

	m.touch()

	return nil
}

// TransitionAction moves an action node through its execution state machine.
func (m *FunctionModel) TransitionAction(id string, next ActionStatus) error {
	if err := m.ensureMetadataEditable(); err != nil {
		return err
	}

	node, ok := m.ActionNodes[id]
	if !ok {
		if m.HasNode(id) {
			return unsupported("transition action", m.Nodes[id].Kind)
		}

		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	if err := node.TransitionAction(next); err != nil {
		return err
	}

	m.touch()

	return nil
}

// ContainerNodes returns container nodes ordered by creation time then ID.
func (m *FunctionModel) ContainerNodes() []*Node {
	return sortedNodes(m.Nodes)
}

// ActionNodeList returns action nodes ordered by creation time then ID.
func (m *FunctionModel) ActionNodeList() []*Node {
	return sortedNodes(m.ActionNodes)
}

// AllNodes returns containers followed by actions.
func (m *FunctionModel) AllNodes() []*Node {
	return append(m.ContainerNodes(), m.ActionNodeList()...)
}

// ActionsFor returns the actions attached to a container sorted by execution order.
func (m *FunctionModel) ActionsFor(containerID string) []*Node {
	var actions []*Node

	for _, node := range m.ActionNodes {
		if node.Action != nil && node.Action.ParentID == containerID {
			actions = append(actions, node)
		}
	}

	slices.SortFunc(actions, func(a, b *Node) int {
		return cmp.Or(
			cmp.Compare(a.Action.ExecutionOrder, b.Action.ExecutionOrder),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return actions
}

// InputNodes returns the input boundary nodes.
func (m *FunctionModel) InputNodes() []*Node {
	var inputs []*Node

	for _, node := range m.ContainerNodes() {
		if node.IsInput() {
			inputs = append(inputs, node)
		}
	}

	return inputs
}

// OutputNodes returns the output boundary nodes.
func (m *FunctionModel) OutputNodes() []*Node {
	var outputs []*Node

	for _, node := range m.ContainerNodes() {
		if node.IsOutput() {
			outputs = append(outputs, node)
		}
	}

	return outputs
}

// Publish makes the model execution-eligible and records a new version.
func (m *FunctionModel) Publish() error {
	if err := m.transition(ModelStatusPublished); err != nil {
		return err
	}

	now := now()
	m.VersionCount++
	m.Version = m.VersionCount
	m.PublishedAt = &now

	return nil
}

// Archive makes the model read-only.
func (m *FunctionModel) Archive() error {
	if err := m.transition(ModelStatusArchived); err != nil {
		return err
	}

	now := now()
	m.ArchivedAt = &now

	return nil
}

// SoftDelete tombstones the model, recording who deleted it and when.
func (m *FunctionModel) SoftDelete(actor string) error {
	if err := ValidateID(actor); err != nil {
		return fmt.Errorf("deleting actor: %w", err)
	}

	if err := m.transition(ModelStatusDeleted); err != nil {
		return err
	}

	now := now()
	m.DeletedAt = &now
	m.DeletedBy = actor

	return nil
}

func (m *FunctionModel) transition(next ModelStatus) error {
	if !m.Status.CanTransitionTo(next) {
		return &TransitionError{Entity: "model", ID: m.ID, From: string(m.Status), To: string(next)}
	}

	m.Status = next
	m.touch()

	return nil
}

// Duplicate creates a new draft model carrying the scalar metadata of m.
// Nodes and action nodes are not copied.
func (m *FunctionModel) Duplicate(name string) (*FunctionModel, error) {
	if name == "" {
		name = m.Name + " (copy)"
	}

	duplicate, err := NewFunctionModel(truncateName(name), m.Description, m.Permissions.Owner)
	if err != nil {
		return nil, err
	}

	duplicate.AgentConfig = cloneMap(m.AgentConfig)
	duplicate.Metadata = cloneMap(m.Metadata)
	duplicate.Metadata["duplicated_from"] = m.ID
	duplicate.Permissions = Permissions{
		Owner:    m.Permissions.Owner,
		Editors:  slices.Clone(m.Permissions.Editors),
		Viewers:  slices.Clone(m.Permissions.Viewers),
		IsPublic: m.Permissions.IsPublic,
	}

	return duplicate, nil
}

// CheckInvariants re-scans the aggregate for model-wide rule violations.
func (m *FunctionModel) CheckInvariants() ValidationResult {
	result := NewValidationResult()

	if m == nil {
		result.AddError("model is nil")

		return result
	}

	if !m.Status.IsValid() {
		result.AddError("model %s has invalid status %q", m.ID, m.Status)
	}

	for id, node := range m.Nodes {
		m.checkStoredNode(&result, id, node)

		if node != nil && !node.Kind.IsContainer() {
			result.AddError("node %s of kind %s is stored as a container", id, node.Kind)
		}

		if _, dup := m.ActionNodes[id]; dup {
			result.AddError("node identifier %s is used by both a container and an action", id)
		}
	}

	for id, node := range m.ActionNodes {
		m.checkStoredNode(&result, id, node)

		if node == nil {
			continue
		}

		if !node.Kind.IsAction() || node.Action == nil {
			result.AddError("node %s of kind %s is stored as an action", id, node.Kind)

			continue
		}

		if _, ok := m.Nodes[node.Action.ParentID]; !ok {
			result.AddError("action %s references missing parent container %s", id, node.Action.ParentID)
		}
	}

	return result
}

func (m *FunctionModel) checkStoredNode(result *ValidationResult, key string, node *Node) {
	if node == nil {
		result.AddError("node entry %s is nil", key)

		return
	}

	if node.ID != key {
		result.AddError("node stored under %s has identifier %s", key, node.ID)
	}

	if node.ModelID != m.ID {
		result.AddError("node %s belongs to model %s", node.ID, node.ModelID)
	}

	if node.DependsOn(node.ID) {
		result.AddError("node %s depends on itself", node.ID)
	}
}

// Clone returns a deep copy of the model.
func (m *FunctionModel) Clone() *FunctionModel {
	clone := *m
	clone.Nodes = make(map[string]*Node, len(m.Nodes))
	clone.ActionNodes = make(map[string]*Node, len(m.ActionNodes))

	for id, node := range m.Nodes {
		clone.Nodes[id] = node.Clone()
	}

	for id, node := range m.ActionNodes {
		clone.ActionNodes[id] = node.Clone()
	}

	clone.AgentConfig = cloneMap(m.AgentConfig)
	clone.Metadata = cloneMap(m.Metadata)
	clone.Permissions.Editors = slices.Clone(m.Permissions.Editors)
	clone.Permissions.Viewers = slices.Clone(m.Permissions.Viewers)

	return &clone
}

func (m *FunctionModel) ensureMaps() {
	if m.Nodes == nil {
		m.Nodes = map[string]*Node{}
	}

	if m.ActionNodes == nil {
		m.ActionNodes = map[string]*Node{}
	}
}

func sortedNodes(nodes map[string]*Node) []*Node {
	out := slices.Collect(maps.Values(nodes))

	slices.SortFunc(out, func(a, b *Node) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return out
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		return string(runes[:MaxNameLength])
	}

	return name
}
