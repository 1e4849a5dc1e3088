package readiness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/flowmodel/pkg/models"
)

type fixture struct {
	model *models.FunctionModel
	stage *models.Node
}

func newFixture(t *testing.T, orders ...int) fixture {
	t.Helper()

	model, err := models.NewFunctionModel("Shipping", "", "alice")
	require.NoError(t, err)

	input, err := models.NewIONode(model.ID, "in", models.IODirectionInput, models.Position{})
	require.NoError(t, err)
	stage, err := models.NewContainerNode(model.ID, models.NodeKindStage, "pack", models.Position{})
	require.NoError(t, err)
	output, err := models.NewIONode(model.ID, "out", models.IODirectionOutput, models.Position{})
	require.NoError(t, err)

	require.NoError(t, model.AddContainerNode(input))
	require.NoError(t, model.AddContainerNode(stage))
	require.NoError(t, model.AddContainerNode(output))
	require.NoError(t, model.AddDependency(stage.ID, input.ID))
	require.NoError(t, model.AddDependency(output.ID, stage.ID))

	for _, order := range orders {
		action, err := models.NewActionNode(model.ID, stage.ID, models.NodeKindTether, "step", order)
		require.NoError(t, err)
		require.NoError(t, model.AddActionNode(action))
	}

	return fixture{model: model, stage: stage}
}

func actionsWithOrders(t *testing.T, parent string, orders ...int) []*models.Node {
	t.Helper()

	actions := make([]*models.Node, 0, len(orders))

	for _, order := range orders {
		action, err := models.NewActionNode("model-1", parent, models.NodeKindKnowledgeBase, "lookup", order)
		require.NoError(t, err)

		actions = append(actions, action)
	}

	return actions
}

func TestCheckEligibility(t *testing.T) {
	t.Run("draft model", func(t *testing.T) {
		f := newFixture(t, 1)

		result := CheckEligibility(f.model)
		assert.False(t, result.IsValid)
		assert.Equal(t, []string{"model must be published to execute (status: draft)"}, result.Errors)
	})

	t.Run("published model", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.model.Publish())

		result := CheckEligibility(f.model)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Warnings)
	})

	t.Run("archived after publishing", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.model.Publish())
		require.NoError(t, f.model.Archive())

		result := CheckEligibility(f.model)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Errors, "model is archived and cannot be executed")
	})

	t.Run("deleted after publishing", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.model.Publish())
		require.NoError(t, f.model.SoftDelete("bob"))

		result := CheckEligibility(f.model)
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Errors, "model has been deleted and cannot be executed")
	})

	t.Run("every failing condition reported", func(t *testing.T) {
		model, err := models.NewFunctionModel("Empty", "", "alice")
		require.NoError(t, err)

		result := CheckEligibility(model)
		assert.Len(t, result.Errors, 3)
	})

	t.Run("stage without actions warns", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.model.Publish())

		result := CheckEligibility(f.model)
		assert.True(t, result.IsValid)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], f.stage.ID)
	})

	t.Run("io boundaries without actions do not warn", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.model.Publish())

		for _, io := range append(f.model.InputNodes(), f.model.OutputNodes()...) {
			assert.Empty(t, f.model.ActionsFor(io.ID))
		}

		result := CheckEligibility(f.model)
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Warnings)
	})

	t.Run("nil model", func(t *testing.T) {
		assert.False(t, CheckEligibility(nil).IsValid)
	})
}

func TestEvaluatePreconditions(t *testing.T) {
	f := newFixture(t, 1)

	preconditions := []Precondition{
		{Name: "passes", Message: "never shown", Check: func(*models.FunctionModel, models.ExecutionContext) (bool, error) { return true, nil }},
		{Name: "false", Message: "budget approved", Check: func(*models.FunctionModel, models.ExecutionContext) (bool, error) { return false, nil }},
		{Name: "errors", Message: "approvals reachable", Check: func(*models.FunctionModel, models.ExecutionContext) (bool, error) {
			return true, errors.New("approvals service down")
		}},
		{Name: "panics", Message: "quota known", Check: func(*models.FunctionModel, models.ExecutionContext) (bool, error) { panic("quota table missing") }},
		{Name: "empty"},
		{Name: "detailed", Message: "stock reserved", Check: func(*models.FunctionModel, models.ExecutionContext) (bool, error) { return false, nil },
			Detail: func(*models.FunctionModel, models.ExecutionContext) string { return "warehouse 7 empty" }},
	}

	result := EvaluatePreconditions(f.model, models.ExecutionContext{}, preconditions)

	assert.False(t, result.IsValid)
	require.Len(t, result.Errors, 5)
	assert.Equal(t, `precondition "false" failed: budget approved`, result.Errors[0])
	assert.Equal(t, `precondition "errors" failed: approvals reachable (check returned error: approvals service down)`, result.Errors[1])
	assert.Equal(t, `precondition "panics" failed: quota known (check panicked: quota table missing)`, result.Errors[2])
	assert.Contains(t, result.Errors[3], "no check defined")
	assert.Equal(t, `precondition "detailed" failed: stock reserved: warehouse 7 empty`, result.Errors[4])
}

func TestBuiltinPreconditions(t *testing.T) {
	f := newFixture(t, 1)

	preconditions, err := Builtin([]string{PreconditionHasActions, PreconditionHasOwner, PreconditionGraphAcyclic, PreconditionWithinEnvironment}, []string{"staging"})
	require.NoError(t, err)
	require.Len(t, preconditions, 4)

	result := EvaluatePreconditions(f.model, models.ExecutionContext{Environment: "staging"}, preconditions)
	assert.True(t, result.IsValid, result.Errors)

	result = EvaluatePreconditions(f.model, models.ExecutionContext{Environment: "production"}, preconditions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], PreconditionWithinEnvironment)

	stage := f.model.Nodes[f.stage.ID]
	stage.Dependencies = append(stage.Dependencies, f.model.OutputNodes()[0].ID)

	result = EvaluatePreconditions(f.model, models.ExecutionContext{Environment: "staging"}, preconditions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `precondition "graph-acyclic" failed: model dependency graph contains a cycle: circular dependency detected`)
	assert.NotContains(t, result.Errors[0], "check returned error")

	passed, err := GraphAcyclic().Check(f.model, models.ExecutionContext{})
	require.NoError(t, err)
	assert.False(t, passed)

	_, err = Builtin([]string{"moon-phase"}, nil)
	assert.ErrorIs(t, err, ErrUnknownPrecondition)
}

func TestValidateExecutionOrder(t *testing.T) {
	testCases := []struct {
		name   string
		orders []int
		errors []string
	}{
		{name: "contiguous", orders: []int{2, 1, 3}},
		{name: "empty"},
		{name: "duplicate", orders: []int{1, 1, 2}, errors: []string{"duplicate execution order 1"}},
		{name: "starts at zero", orders: []int{0, 1}, errors: []string{"must start at 1, found 0"}},
		{name: "negative", orders: []int{-1}, errors: []string{"must start at 1, found -1"}},
		{name: "starts at two", orders: []int{2, 3}, errors: []string{"must start at 1, found 2"}},
		{name: "single gap", orders: []int{1, 3}, errors: []string{"missing order 2"}},
		{name: "gap run", orders: []int{1, 2, 5}, errors: []string{"missing orders 3-4"}},
		{name: "two gaps", orders: []int{1, 3, 6}, errors: []string{"missing order 2", "missing orders 4-5"}},
		{name: "late start", orders: []int{3, 5}, errors: []string{"must start at 1, found 3", "missing order 4"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateExecutionOrder(actionsWithOrders(t, "stage-1", tc.orders...))

			require.Len(t, result.Errors, len(tc.errors), result.Errors)

			for i, want := range tc.errors {
				assert.Contains(t, result.Errors[i], want)
			}

			assert.Equal(t, len(tc.errors) == 0, result.IsValid)
		})
	}
}

func TestValidateExecutionOrder_FarOrderReportsOneRange(t *testing.T) {
	actions := actionsWithOrders(t, "stage-1", 1, 2)
	actions[1].Action.ExecutionOrder = 3_000_000

	result := ValidateExecutionOrder(actions)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing orders 2-2999999")
}

func TestValidateExecutionOrder_ScopedPerContainer(t *testing.T) {
	actions := append(actionsWithOrders(t, "stage-1", 1, 2), actionsWithOrders(t, "stage-2", 1)...)

	result := ValidateExecutionOrder(actions)
	assert.True(t, result.IsValid)

	notAction, err := models.NewContainerNode("model-1", models.NodeKindStage, "s", models.Position{})
	require.NoError(t, err)

	result = ValidateExecutionOrder([]*models.Node{notAction})
	assert.False(t, result.IsValid)
}

func TestCheckResources(t *testing.T) {
	actions := actionsWithOrders(t, "stage-1", 1, 2, 3)
	demands := []models.ResourceRequirements{
		{CPU: 0.5, MemoryMB: 256, ExecutionTime: 10 * time.Second},
		{CPU: 2, MemoryMB: 128, ExecutionTime: time.Minute},
		{CPU: 0.25, MemoryMB: 1024, ExecutionTime: 5 * time.Second},
	}

	for i, action := range actions {
		require.NoError(t, action.SetResources(demands[i]))
	}

	want := models.ResourceRequirements{CPU: 2.75, MemoryMB: 1408, ExecutionTime: 75 * time.Second}

	t.Run("within limits", func(t *testing.T) {
		report := CheckResources(actions, ResourceLimits{MaxCPU: 4, MaxMemoryMB: 2048})
		assert.True(t, report.IsValid)
		assert.Equal(t, want, report.Totals)
	})

	t.Run("per action limits name the action", func(t *testing.T) {
		report := CheckResources(actions, ResourceLimits{MaxCPU: 1, MaxMemoryMB: 512, MaxExecutionTime: 30 * time.Second})
		assert.False(t, report.IsValid)
		require.Len(t, report.Errors, 3)
		assert.Contains(t, report.Errors[0], actions[1].ID)
		assert.Contains(t, report.Errors[0], "cpu")
		assert.Contains(t, report.Errors[1], actions[1].ID)
		assert.Contains(t, report.Errors[1], "execution time")
		assert.Contains(t, report.Errors[2], actions[2].ID)
		assert.Contains(t, report.Errors[2], "memory")
		assert.Equal(t, want, report.Totals)
	})

	t.Run("aggregate limits", func(t *testing.T) {
		report := CheckResources(actions, ResourceLimits{MaxTotalCPU: 2, MaxTotalMemoryMB: 1024, MaxTotalExecutionTime: time.Minute})
		assert.Len(t, report.Errors, 3)
		assert.Equal(t, want, report.Totals)
	})

	t.Run("no limits", func(t *testing.T) {
		report := CheckResources(actions, ResourceLimits{})
		assert.True(t, report.IsValid)
		assert.Equal(t, want, report.Totals)
	})
}

func TestCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		f := newFixture(t, 1, 2)
		require.NoError(t, f.model.Publish())

		report := Check(f.model, models.ExecutionContext{}, Options{Preconditions: []Precondition{HasOwner()}})
		assert.True(t, report.CanExecute, report.Errors)
		assert.Empty(t, report.Errors)
		require.Len(t, report.Summary, 4)

		for _, summary := range report.Summary {
			assert.True(t, summary.Passed, summary.Name)
		}
	})

	t.Run("never short circuits", func(t *testing.T) {
		f := newFixture(t, 1, 1)

		report := Check(f.model, models.ExecutionContext{}, Options{
			Preconditions: []Precondition{WithinEnvironment("production")},
			Limits:        ResourceLimits{MaxTotalCPU: 0},
		})

		assert.False(t, report.CanExecute)
		assert.False(t, report.Eligibility.IsValid)
		assert.False(t, report.Preconditions.IsValid)
		assert.False(t, report.ExecutionOrder.IsValid)
		assert.True(t, report.Resources.IsValid)
		assert.Len(t, report.Errors, 3)
		assert.Equal(t, f.model.ID, report.ModelID)
	})

	t.Run("nil model", func(t *testing.T) {
		report := Check(nil, models.ExecutionContext{}, Options{})
		assert.False(t, report.CanExecute)
		assert.Len(t, report.Errors, 2)
	})
}
