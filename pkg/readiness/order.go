package readiness

import (
	"slices"
	"strings"

	"github.com/dukex/flowmodel/pkg/models"
)

// ValidateExecutionOrder checks the sequencing of actions within each parent
// container: orders start at 1, never repeat, and leave no gaps.
func ValidateExecutionOrder(actions []*models.Node) models.ValidationResult {
	result := models.NewValidationResult()

	groups := map[string]map[int][]string{}

	for _, action := range actions {
		if action == nil {
			result.AddError("action list contains a nil node")

			continue
		}

		if action.Action == nil {
			result.AddError("node %s is not an action and has no execution order", action.ID)

			continue
		}

		parent := action.Action.ParentID
		if groups[parent] == nil {
			groups[parent] = map[int][]string{}
		}

		groups[parent][action.Action.ExecutionOrder] = append(groups[parent][action.Action.ExecutionOrder], action.ID)
	}

	parents := make([]string, 0, len(groups))
	for parent := range groups {
		parents = append(parents, parent)
	}

	slices.Sort(parents)

	for _, parent := range parents {
		checkContainerOrder(&result, parent, groups[parent])
	}

	return result
}

func checkContainerOrder(result *models.ValidationResult, parent string, byOrder map[int][]string) {
	orders := make([]int, 0, len(byOrder))
	for order := range byOrder {
		orders = append(orders, order)
	}

	slices.Sort(orders)

	first := orders[0]

	if first != 1 {
		result.AddError("execution order in container %s must start at 1, found %d", parent, first)
	}

	for _, order := range orders {
		if ids := byOrder[order]; len(ids) > 1 {
			slices.Sort(ids)
			result.AddError("duplicate execution order %d in container %s: actions %s", order, parent, strings.Join(ids, ", "))
		}
	}

	next := max(first, 1)

	for _, order := range orders {
		if order <= next {
			next = max(next, order+1)

			continue
		}

		reportGap(result, parent, next, order-1)
		next = order + 1
	}
}

// reportGap adds one error per missing run of orders.
func reportGap(result *models.ValidationResult, parent string, from, to int) {
	if from == to {
		result.AddError("execution order gap in container %s: missing order %d", parent, from)

		return
	}

	result.AddError("execution order gap in container %s: missing orders %d-%d", parent, from, to)
}
