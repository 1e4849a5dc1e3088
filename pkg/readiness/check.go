package readiness

import (
	"github.com/dukex/flowmodel/pkg/models"
)

// Names of the sub-checks in a Report summary.
const (
	CheckNameEligibility    = "eligibility"
	CheckNamePreconditions  = "preconditions"
	CheckNameExecutionOrder = "execution_order"
	CheckNameResources      = "resources"
)

// Options configures the composite check.
type Options struct {
	Preconditions []Precondition
	Limits        ResourceLimits
}

// CheckSummary condenses one sub-check.
type CheckSummary struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

// Report is the outcome of the composite readiness check.
type Report struct {
	ModelID        string                      `json:"model_id,omitempty"`
	CanExecute     bool                        `json:"can_execute"`
	Eligibility    models.ValidationResult     `json:"eligibility"`
	Preconditions  models.ValidationResult     `json:"preconditions"`
	ExecutionOrder models.ValidationResult     `json:"execution_order"`
	Resources      models.ValidationResult     `json:"resources"`
	Totals         models.ResourceRequirements `json:"totals"`
	Summary        []CheckSummary              `json:"summary"`
	Errors         []string                    `json:"errors"`
	Warnings       []string                    `json:"warnings"`
}

// Check runs every sub-check regardless of earlier failures. CanExecute is true
// only when all of them pass.
func Check(model *models.FunctionModel, ectx models.ExecutionContext, opts Options) Report {
	report := Report{
		Eligibility: CheckEligibility(model),
		Errors:      []string{},
		Warnings:    []string{},
	}

	var actions []*models.Node

	if model != nil {
		report.ModelID = model.ID
		actions = model.ActionNodeList()
		report.Preconditions = EvaluatePreconditions(model, ectx, opts.Preconditions)
	} else {
		report.Preconditions = models.NewValidationResult()
		report.Preconditions.AddError("preconditions cannot be evaluated without a model")
	}

	report.ExecutionOrder = ValidateExecutionOrder(actions)

	resources := CheckResources(actions, opts.Limits)
	report.Resources = resources.ValidationResult
	report.Totals = resources.Totals

	report.CanExecute = true

	for _, sub := range []struct {
		name   string
		result models.ValidationResult
	}{
		{CheckNameEligibility, report.Eligibility},
		{CheckNamePreconditions, report.Preconditions},
		{CheckNameExecutionOrder, report.ExecutionOrder},
		{CheckNameResources, report.Resources},
	} {
		report.Summary = append(report.Summary, CheckSummary{
			Name:     sub.name,
			Passed:   sub.result.IsValid,
			Errors:   len(sub.result.Errors),
			Warnings: len(sub.result.Warnings),
		})

		report.CanExecute = report.CanExecute && sub.result.IsValid
		report.Errors = append(report.Errors, sub.result.Errors...)
		report.Warnings = append(report.Warnings, sub.result.Warnings...)
	}

	return report
}
