package readiness

import (
	"time"

	"github.com/dukex/flowmodel/pkg/models"
)

// ResourceLimits caps the demand of each action and, optionally, of all actions
// together. A zero value means the limit is not enforced.
type ResourceLimits struct {
	MaxCPU                float64       `json:"max_cpu"                  yaml:"max_cpu"                  validate:"gte=0"`
	MaxMemoryMB           int64         `json:"max_memory_mb"            yaml:"max_memory_mb"            validate:"gte=0"`
	MaxExecutionTime      time.Duration `json:"max_execution_time"       yaml:"max_execution_time"       validate:"gte=0"`
	MaxTotalCPU           float64       `json:"max_total_cpu"            yaml:"max_total_cpu"            validate:"gte=0"`
	MaxTotalMemoryMB      int64         `json:"max_total_memory_mb"      yaml:"max_total_memory_mb"      validate:"gte=0"`
	MaxTotalExecutionTime time.Duration `json:"max_total_execution_time" yaml:"max_total_execution_time" validate:"gte=0"`
}

// ResourceReport carries the limit check outcome and the aggregate demand.
type ResourceReport struct {
	models.ValidationResult
	Totals models.ResourceRequirements `json:"totals"`
}

// CheckResources sums the declared demand of every action and compares each
// action, then the total, against the limits. Totals are always filled in.
func CheckResources(actions []*models.Node, limits ResourceLimits) ResourceReport {
	report := ResourceReport{ValidationResult: models.NewValidationResult()}

	for _, action := range actions {
		if action == nil || action.Action == nil {
			continue
		}

		demand := action.Action.Resources
		report.Totals = report.Totals.Add(demand)

		if limits.MaxCPU > 0 && demand.CPU > limits.MaxCPU {
			report.AddError("action %s (%s) requires %.2f cpu, exceeding the per-action limit of %.2f",
				action.ID, action.Name, demand.CPU, limits.MaxCPU)
		}

		if limits.MaxMemoryMB > 0 && demand.MemoryMB > limits.MaxMemoryMB {
			report.AddError("action %s (%s) requires %d MB memory, exceeding the per-action limit of %d MB",
				action.ID, action.Name, demand.MemoryMB, limits.MaxMemoryMB)
		}

		if limits.MaxExecutionTime > 0 && demand.ExecutionTime > limits.MaxExecutionTime {
			report.AddError("action %s (%s) requires %s execution time, exceeding the per-action limit of %s",
				action.ID, action.Name, demand.ExecutionTime, limits.MaxExecutionTime)
		}
	}

	if limits.MaxTotalCPU > 0 && report.Totals.CPU > limits.MaxTotalCPU {
		report.AddError("total cpu %.2f exceeds the limit of %.2f", report.Totals.CPU, limits.MaxTotalCPU)
	}

	if limits.MaxTotalMemoryMB > 0 && report.Totals.MemoryMB > limits.MaxTotalMemoryMB {
		report.AddError("total memory %d MB exceeds the limit of %d MB", report.Totals.MemoryMB, limits.MaxTotalMemoryMB)
	}

	if limits.MaxTotalExecutionTime > 0 && report.Totals.ExecutionTime > limits.MaxTotalExecutionTime {
		report.AddError("total execution time %s exceeds the limit of %s", report.Totals.ExecutionTime, limits.MaxTotalExecutionTime)
	}

	return report
}
