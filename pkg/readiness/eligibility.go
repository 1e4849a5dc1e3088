// Package readiness decides whether a function model may be handed to an
// execution engine. Every check reports all of its problems at once.
package readiness

import (
	"github.com/dukex/flowmodel/pkg/models"
)

// CheckEligibility requires a published, live model with input and output boundaries.
func CheckEligibility(model *models.FunctionModel) models.ValidationResult {
	result := models.NewValidationResult()

	if model == nil {
		result.AddError("model is required")

		return result
	}

	if model.Status != models.ModelStatusPublished {
		result.AddError("model must be published to execute (status: %s)", model.Status)
	}

	if model.IsArchived() {
		result.AddError("model is archived and cannot be executed")
	}

	if model.IsDeleted() {
		result.AddError("model has been deleted and cannot be executed")
	}

	if len(model.InputNodes()) == 0 {
		result.AddError("model must have at least one input node")
	}

	if len(model.OutputNodes()) == 0 {
		result.AddError("model must have at least one output node")
	}

	// io containers are data boundaries and commonly carry no actions, so
	// only stages warn.
	for _, container := range model.ContainerNodes() {
		if container.Kind != models.NodeKindStage {
			continue
		}

		if len(model.ActionsFor(container.ID)) == 0 {
			result.AddWarning("container %s (%s) has no actions", container.ID, container.Name)
		}
	}

	return result
}
