package readiness

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/validation"
)

// ErrUnknownPrecondition is returned when a policy names a precondition that does not exist.
var ErrUnknownPrecondition = errors.New("unknown precondition")

// CheckFunc decides whether a precondition holds.
type CheckFunc func(model *models.FunctionModel, ectx models.ExecutionContext) (bool, error)

// DetailFunc explains a failed check, e.g. by naming the offending nodes.
type DetailFunc func(model *models.FunctionModel, ectx models.ExecutionContext) string

// Precondition is a named predicate with the message reported when it does not hold.
// Detail is optional and only consulted when Check returns false.
type Precondition struct {
	Name    string
	Message string
	Check   CheckFunc
	Detail  DetailFunc
}

// EvaluatePreconditions runs every precondition. A check that returns false,
// returns an error, or panics is reported as failed; the message says which.
func EvaluatePreconditions(model *models.FunctionModel, ectx models.ExecutionContext, preconditions []Precondition) models.ValidationResult {
	result := models.NewValidationResult()

	for _, precondition := range preconditions {
		if msg, ok := evaluate(model, ectx, precondition); !ok {
			result.AddError("%s", msg)
		}
	}

	return result
}

func evaluate(model *models.FunctionModel, ectx models.ExecutionContext, p Precondition) (msg string, ok bool) {
	failed := func(format string, args ...any) string {
		detail := p.Message
		if detail == "" {
			detail = "condition not met"
		}

		return fmt.Sprintf("precondition %q failed: %s", p.Name, detail) + fmt.Sprintf(format, args...)
	}

	if p.Check == nil {
		return failed(" (no check defined)"), false
	}

	defer func() {
		if r := recover(); r != nil {
			msg = failed(" (check panicked: %v)", r)
			ok = false
		}
	}()

	passed, err := p.Check(model, ectx)

	switch {
	case err != nil:
		return failed(" (check returned error: %v)", err), false
	case !passed:
		if p.Detail != nil {
			if detail := p.Detail(model, ectx); detail != "" {
				return failed(": %s", detail), false
			}
		}

		return failed(""), false
	default:
		return "", true
	}
}

// Names of the built-in preconditions selectable from a policy.
const (
	PreconditionHasActions        = "has-actions"
	PreconditionHasOwner          = "has-owner"
	PreconditionGraphAcyclic      = "graph-acyclic"
	PreconditionWithinEnvironment = "within-environment"
)

// HasActions holds when the model has at least one action node.
func HasActions() Precondition {
	return Precondition{
		Name:    PreconditionHasActions,
		Message: "model has no action nodes",
		Check: func(model *models.FunctionModel, _ models.ExecutionContext) (bool, error) {
			return len(model.ActionNodes) > 0, nil
		},
	}
}

// HasOwner holds when the model has an owner recorded.
func HasOwner() Precondition {
	return Precondition{
		Name:    PreconditionHasOwner,
		Message: "model has no owner",
		Check: func(model *models.FunctionModel, _ models.ExecutionContext) (bool, error) {
			return strings.TrimSpace(model.Permissions.Owner) != "", nil
		},
	}
}

// GraphAcyclic holds when no dependency cycle exists among the model's nodes.
func GraphAcyclic() Precondition {
	return Precondition{
		Name:    PreconditionGraphAcyclic,
		Message: "model dependency graph contains a cycle",
		Check: func(model *models.FunctionModel, _ models.ExecutionContext) (bool, error) {
			return validation.ValidateCircularDependencies(model.AllNodes(), nil).IsValid, nil
		},
		Detail: func(model *models.FunctionModel, _ models.ExecutionContext) string {
			return strings.Join(validation.ValidateCircularDependencies(model.AllNodes(), nil).Errors, "; ")
		},
	}
}

// WithinEnvironment holds when the execution context targets one of the allowed environments.
func WithinEnvironment(allowed ...string) Precondition {
	return Precondition{
		Name:    PreconditionWithinEnvironment,
		Message: fmt.Sprintf("execution environment must be one of [%s]", strings.Join(allowed, ", ")),
		Check: func(_ *models.FunctionModel, ectx models.ExecutionContext) (bool, error) {
			return slices.Contains(allowed, ectx.Environment), nil
		},
	}
}

// Builtin resolves preconditions by name. environments feeds WithinEnvironment.
func Builtin(names []string, environments []string) ([]Precondition, error) {
	preconditions := make([]Precondition, 0, len(names))

	for _, name := range names {
		switch name {
		case PreconditionHasActions:
			preconditions = append(preconditions, HasActions())
		case PreconditionHasOwner:
			preconditions = append(preconditions, HasOwner())
		case PreconditionGraphAcyclic:
			preconditions = append(preconditions, GraphAcyclic())
		case PreconditionWithinEnvironment:
			preconditions = append(preconditions, WithinEnvironment(environments...))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownPrecondition, name)
		}
	}

	return preconditions, nil
}
