// Package services implements the function model and cross-feature link use cases on top of persistence.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/validation"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidStatus    = errors.New("invalid model status")
	ErrEmptyActor       = errors.New("actor cannot be empty")
	ErrGraphInvalid     = errors.New("graph validation failed")
	ErrNoHierarchy      = errors.New("hierarchy is not available for this feature")
)

// Error codes carried by ServiceError.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidGraph = "GRAPH_INVALID"
)

var validationErrors = []error{
	ErrInvalidRequest,
	ErrInvalidSortField,
	ErrInvalidStatus,
	ErrEmptyActor,
	ErrGraphInvalid,
	ErrNoHierarchy,
	models.ErrInvalidName,
	models.ErrInvalidDescription,
	models.ErrInvalidPosition,
	models.ErrInvalidID,
	models.ErrSelfDependency,
	models.ErrInvalidNodeKind,
	models.ErrUnsupportedOperation,
	models.ErrInvalidExecutionMode,
	models.ErrInvalidStatus,
	models.ErrInvalidPriority,
	models.ErrInvalidRetryPolicy,
	models.ErrInvalidRACI,
	models.ErrInvalidResources,
	models.ErrInvalidExecutionOrder,
	models.ErrParentNotFound,
	models.ErrModelMismatch,
	models.ErrSelfLink,
	models.ErrInvalidLinkType,
	models.ErrInvalidFeatureType,
	models.ErrInvalidEndpoint,
	models.ErrNotHierarchical,
	models.ErrHierarchyCycle,
}

var conflictErrors = []error{
	models.ErrInvalidTransition,
	models.ErrRetriesExhausted,
	models.ErrModelNotEditable,
	models.ErrContainerHasActions,
	models.ErrDuplicateNodeID,
	models.ErrDuplicateDependency,
}

var notFoundErrors = []error{
	persistence.ErrModelNotFound,
	persistence.ErrLinkNotFound,
	models.ErrNodeNotFound,
	models.ErrDependencyNotFound,
}

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// GraphInvalidError carries the validation report that blocked an operation.
type GraphInvalidError struct {
	Report validation.GraphReport
}

func (e *GraphInvalidError) Error() string {
	return fmt.Sprintf("%v: %s", ErrGraphInvalid, strings.Join(e.Report.Errors, "; "))
}

func (e *GraphInvalidError) Unwrap() error {
	return ErrGraphInvalid
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return matchesAny(err, validationErrors)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return matchesAny(err, conflictErrors)
}

// IsNotFound checks if an error reports a missing model, node or link (HTTP 404).
func IsNotFound(err error) bool {
	return matchesAny(err, notFoundErrors)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// classify wraps client errors in a ServiceError carrying their code; other errors get op context.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return err
	}

	var code string

	switch {
	case IsNotFound(err):
		code = CodeNotFound
	case IsConflictError(err):
		code = CodeConflict
	case errors.Is(err, ErrGraphInvalid):
		code = CodeInvalidGraph
	case IsValidationError(err):
		code = CodeValidation
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	return &ServiceError{Op: op, Code: code, Message: err.Error(), Err: err}
}
