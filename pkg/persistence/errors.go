package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrModelNotFound indicates a function model was not found by the given identifier.
	ErrModelNotFound = errors.New("function model not found")

	// ErrLinkNotFound indicates a cross-feature link was not found by the given identifier.
	ErrLinkNotFound = errors.New("link not found")

	// ErrInvalidSortField indicates a listing asked to sort by an unsupported field.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// ModelError wraps model-related errors with additional context.
type ModelError struct {
	Op      string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	ModelID string
	Err     error
	Message string
}

func (e *ModelError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for model %s: %s (%v)", e.Op, e.ModelID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for model %s: %v", e.Op, e.ModelID, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for model errors.
func (e *ModelError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewModelError creates a new model error with context.
func NewModelError(op, modelID string, err error) *ModelError {
	return &ModelError{
		Op:      op,
		ModelID: modelID,
		Err:     err,
	}
}

// LinkError wraps link-related errors with additional context.
type LinkError struct {
	Op     string
	LinkID string
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("%s operation failed for link %s: %v", e.Op, e.LinkID, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

func (e *LinkError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewLinkError creates a new link error with context.
func NewLinkError(op, linkID string, err error) *LinkError {
	return &LinkError{
		Op:     op,
		LinkID: linkID,
		Err:    err,
	}
}

// IsModelNotFound checks if an error indicates a model was not found.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

// IsLinkNotFound checks if an error indicates a link was not found.
func IsLinkNotFound(err error) bool {
	return errors.Is(err, ErrLinkNotFound)
}

// IsInvalidSortField checks if an error indicates an unsupported sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
