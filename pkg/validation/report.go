package validation

import (
	"slices"

	"github.com/dukex/flowmodel/pkg/models"
)

// GraphReport is the combined outcome of every graph validator plus per-node checks.
type GraphReport struct {
	IsValid              bool                               `json:"is_valid"`
	Connections          models.ValidationResult            `json:"connections"`
	ExecutionFlow        models.ValidationResult            `json:"execution_flow"`
	CircularDependencies models.ValidationResult            `json:"circular_dependencies"`
	RequiredNodes        models.ValidationResult            `json:"required_nodes"`
	Nodes                map[string]models.ValidationResult `json:"nodes,omitempty"`
	Errors               []string                           `json:"errors"`
	Warnings             []string                           `json:"warnings"`
}

// Result flattens the report into a single validation result.
func (r GraphReport) Result() models.ValidationResult {
	return models.ValidationResult{
		IsValid:  r.IsValid,
		Errors:   slices.Clone(r.Errors),
		Warnings: slices.Clone(r.Warnings),
	}
}

// ValidateGraph runs all four graph validators and each node's own checks.
// No validator is skipped because another failed.
func ValidateGraph(nodes []*models.Node, edges []models.Edge) GraphReport {
	report := GraphReport{
		Connections:          ValidateConnections(nodes, edges),
		ExecutionFlow:        ValidateExecutionFlow(nodes, edges),
		CircularDependencies: ValidateCircularDependencies(nodes, edges),
		RequiredNodes:        ValidateRequiredNodes(nodes, edges),
		Nodes:                map[string]models.ValidationResult{},
	}

	combined := models.NewValidationResult()
	combined.Merge(report.Connections)
	combined.Merge(report.ExecutionFlow)
	combined.Merge(report.CircularDependencies)
	combined.Merge(report.RequiredNodes)

	for _, node := range nodes {
		if node == nil || node.ID == "" {
			continue
		}

		nodeResult := node.Validate()
		report.Nodes[node.ID] = nodeResult
		combined.Merge(nodeResult)
	}

	report.IsValid = combined.IsValid
	report.Errors = dedupe(combined.Errors)
	report.Warnings = dedupe(combined.Warnings)

	return report
}

// ValidateModel validates every node of a model. Each action is treated as
// connected to its parent container.
func ValidateModel(model *models.FunctionModel) GraphReport {
	if model == nil {
		return ValidateGraph(nil, nil)
	}

	var edges []models.Edge

	for _, action := range model.ActionNodeList() {
		if action.Action == nil || !model.HasNode(action.Action.ParentID) {
			continue
		}

		edges = append(edges, models.Edge{Source: action.Action.ParentID, Target: action.ID})
	}

	report := ValidateGraph(model.AllNodes(), edges)

	invariants := model.CheckInvariants()
	if !invariants.IsValid {
		report.IsValid = false
		report.Errors = dedupe(append(report.Errors, invariants.Errors...))
	}

	return report
}

// dedupe keeps the first occurrence of every message. Snapshot-level problems
// are reported by each validator and should appear once.
func dedupe(messages []string) []string {
	out := make([]string, 0, len(messages))

	for _, msg := range messages {
		if !slices.Contains(out, msg) {
			out = append(out, msg)
		}
	}

	return out
}
