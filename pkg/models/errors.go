package models

import (
	"errors"
	"fmt"
)

// Domain rule violations. Mutators and constructors wrap these with context,
// so callers should match them with errors.Is.
var (
	// Node field rules.
	ErrInvalidName        = errors.New("invalid name")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidPosition    = errors.New("invalid position")
	ErrInvalidID          = errors.New("invalid identifier")

	// Dependency rules.
	ErrSelfDependency      = errors.New("node cannot depend on itself")
	ErrDuplicateDependency = errors.New("dependency already exists")
	ErrDependencyNotFound  = errors.New("dependency not found")

	// Variant rules.
	ErrInvalidNodeKind      = errors.New("invalid node kind")
	ErrUnsupportedOperation = errors.New("operation unsupported for this node type")
	ErrInvalidExecutionMode = errors.New("invalid execution mode")

	// State machines.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrRetriesExhausted  = errors.New("retry attempts exhausted")

	// Action attributes.
	ErrInvalidPriority       = errors.New("priority must be between 1 and 10")
	ErrInvalidRetryPolicy    = errors.New("invalid retry policy")
	ErrInvalidRACI           = errors.New("invalid RACI assignment")
	ErrInvalidResources      = errors.New("invalid resource requirements")
	ErrInvalidExecutionOrder = errors.New("invalid execution order")

	// Aggregate rules.
	ErrDuplicateNodeID     = errors.New("node identifier already exists in model")
	ErrNodeNotFound        = errors.New("node not found")
	ErrParentNotFound      = errors.New("parent container not found")
	ErrModelMismatch       = errors.New("node belongs to a different model")
	ErrModelNotEditable    = errors.New("model is not editable")
	ErrContainerHasActions = errors.New("container still has attached actions")
	ErrHierarchyCycle      = errors.New("context hierarchy contains a cycle")

	// Link rules.
	ErrSelfLink           = errors.New("link source and target are identical")
	ErrInvalidLinkType    = errors.New("invalid link type")
	ErrInvalidFeatureType = errors.New("invalid feature type")
	ErrInvalidEndpoint    = errors.New("invalid link endpoint")
	ErrNotHierarchical    = errors.New("link endpoints are not nodes in the same hierarchy")
)

// TransitionError reports a rejected state machine transition.
type TransitionError struct {
	Entity string // "node", "action" or "model"
	ID     string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s status transition for %s: %s -> %s", e.Entity, e.ID, e.From, e.To)
	}

	return fmt.Sprintf("invalid %s status transition: %s -> %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// unsupported wraps ErrUnsupportedOperation with the offending operation and kind.
func unsupported(operation string, kind NodeKind) error {
	return fmt.Errorf("%s on %s node: %w", operation, kind, ErrUnsupportedOperation)
}
