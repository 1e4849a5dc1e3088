package models

import (
	"fmt"
	"slices"
)

// NodeStatus represents the structural lifecycle state of a node.
type NodeStatus string

const (
	NodeStatusDraft    NodeStatus = "draft"    // Initial state
	NodeStatusActive   NodeStatus = "active"   // Part of the live graph
	NodeStatusInactive NodeStatus = "inactive" // Temporarily disabled
	NodeStatusError    NodeStatus = "error"    // Flagged by validation or an operator
	NodeStatusArchived NodeStatus = "archived" // Terminal
)

var nodeTransitions = map[NodeStatus][]NodeStatus{
	NodeStatusDraft:    {NodeStatusActive, NodeStatusArchived},
	NodeStatusActive:   {NodeStatusInactive, NodeStatusArchived, NodeStatusError},
	NodeStatusInactive: {NodeStatusActive, NodeStatusArchived},
	NodeStatusError:    {NodeStatusActive, NodeStatusInactive, NodeStatusArchived},
	NodeStatusArchived: {},
}

// IsValid reports whether the status belongs to the node state machine.
func (s NodeStatus) IsValid() bool {
	_, ok := nodeTransitions[s]

	return ok
}

// CanTransitionTo checks the node transition table.
func (s NodeStatus) CanTransitionTo(next NodeStatus) bool {
	return slices.Contains(nodeTransitions[s], next)
}

// ActionStatus represents the execution lifecycle of an action node.
type ActionStatus string

const (
	ActionStatusDraft     ActionStatus = "draft"
	ActionStatusActive    ActionStatus = "active"
	ActionStatusInactive  ActionStatus = "inactive"
	ActionStatusExecuting ActionStatus = "executing"
	ActionStatusCompleted ActionStatus = "completed"
	ActionStatusFailed    ActionStatus = "failed"
	ActionStatusRetrying  ActionStatus = "retrying"
	ActionStatusArchived  ActionStatus = "archived"
)

var actionTransitions = map[ActionStatus][]ActionStatus{
	ActionStatusDraft:     {ActionStatusActive, ActionStatusArchived},
	ActionStatusActive:    {ActionStatusInactive, ActionStatusExecuting, ActionStatusArchived},
	ActionStatusInactive:  {ActionStatusActive, ActionStatusArchived},
	ActionStatusExecuting: {ActionStatusCompleted, ActionStatusFailed},
	ActionStatusFailed:    {ActionStatusRetrying, ActionStatusActive, ActionStatusArchived},
	ActionStatusRetrying:  {ActionStatusExecuting, ActionStatusFailed},
	ActionStatusCompleted: {ActionStatusActive, ActionStatusArchived},
	ActionStatusArchived:  {},
}

func (s ActionStatus) IsValid() bool {
	_, ok := actionTransitions[s]

	return ok
}

func (s ActionStatus) CanTransitionTo(next ActionStatus) bool {
	return slices.Contains(actionTransitions[s], next)
}

// ModelStatus represents the lifecycle state of a function model.
type ModelStatus string

const (
	ModelStatusDraft     ModelStatus = "draft"     // Editable, not executable
	ModelStatusPublished ModelStatus = "published" // Execution eligible, still archivable
	ModelStatusArchived  ModelStatus = "archived"  // Read-only
	ModelStatusDeleted   ModelStatus = "deleted"   // Soft-deleted tombstone
)

var modelTransitions = map[ModelStatus][]ModelStatus{
	ModelStatusDraft:     {ModelStatusPublished, ModelStatusArchived, ModelStatusDeleted},
	ModelStatusPublished: {ModelStatusArchived, ModelStatusDeleted},
	ModelStatusArchived:  {ModelStatusDeleted},
	ModelStatusDeleted:   {},
}

func (s ModelStatus) IsValid() bool {
	_, ok := modelTransitions[s]

	return ok
}

func (s ModelStatus) CanTransitionTo(next ModelStatus) bool {
	return slices.Contains(modelTransitions[s], next)
}

// ParseModelStatus converts user input into a model status.
func ParseModelStatus(value string) (ModelStatus, error) {
	status := ModelStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}

	return status, nil
}

// ParseNodeStatus converts user input into a node status.
func ParseNodeStatus(value string) (NodeStatus, error) {
	status := NodeStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: node status %q", ErrInvalidStatus, value)
	}

	return status, nil
}

// ParseActionStatus converts user input into an action status.
func ParseActionStatus(value string) (ActionStatus, error) {
	status := ActionStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: action status %q", ErrInvalidStatus, value)
	}

	return status, nil
}

// ExecutionMode describes how a node schedules its dependents.
type ExecutionMode string

const (
	ExecutionModeSequential  ExecutionMode = "sequential"
	ExecutionModeParallel    ExecutionMode = "parallel"
	ExecutionModeConditional ExecutionMode = "conditional"
)

func (m ExecutionMode) IsValid() bool {
	switch m {
	case ExecutionModeSequential, ExecutionModeParallel, ExecutionModeConditional:
		return true
	default:
		return false
	}
}
