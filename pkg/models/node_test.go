package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelID = "model-1"

func newTestStage(t *testing.T, name string) *Node {
	t.Helper()

	node, err := NewContainerNode(testModelID, NodeKindStage, name, Position{X: 10, Y: 20})
	require.NoError(t, err)

	return node
}

func newTestAction(t *testing.T, parentID string, order int) *Node {
	t.Helper()

	node, err := NewActionNode(testModelID, parentID, NodeKindTether, "call-api", order)
	require.NoError(t, err)

	return node
}

func TestNewContainerNode_Defaults(t *testing.T) {
	node := newTestStage(t, "  Enrich  ")

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "Enrich", node.Name)
	assert.Equal(t, NodeStatusDraft, node.Status)
	assert.Equal(t, ExecutionModeSequential, node.ExecutionMode)
	assert.Empty(t, node.Dependencies)
	assert.NotNil(t, node.Payload.Stage)
	assert.Nil(t, node.Action)
	assert.False(t, node.CreatedAt.IsZero())
}

func TestNewContainerNode_Rejections(t *testing.T) {
	testCases := []struct {
		name    string
		kind    NodeKind
		label   string
		modelID string
		wantErr error
	}{
		{name: "empty name", kind: NodeKindStage, label: "   ", modelID: testModelID, wantErr: ErrInvalidName},
		{name: "name too long", kind: NodeKindStage, label: strings.Repeat("x", MaxNameLength+1), modelID: testModelID, wantErr: ErrInvalidName},
		{name: "action kind", kind: NodeKindTether, label: "t", modelID: testModelID, wantErr: ErrInvalidNodeKind},
		{name: "unknown kind", kind: NodeKind("robot"), label: "r", modelID: testModelID, wantErr: ErrInvalidNodeKind},
		{name: "missing model", kind: NodeKindIO, label: "in", modelID: "", wantErr: ErrInvalidID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewContainerNode(tc.modelID, tc.kind, tc.label, Position{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewActionNode_Defaults(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)

	attrs, err := node.ActionAttributes()
	require.NoError(t, err)
	assert.Equal(t, "stage-1", attrs.ParentID)
	assert.Equal(t, 1, attrs.ExecutionOrder)
	assert.Equal(t, DefaultPriority, attrs.Priority)
	assert.Equal(t, DefaultRetryPolicy(), attrs.RetryPolicy)
	assert.Equal(t, ActionStatusDraft, attrs.Status)
	assert.NotNil(t, node.Payload.Tether)

	_, err = NewActionNode(testModelID, "", NodeKindTether, "t", 1)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewActionNode(testModelID, "stage-1", NodeKindStage, "s", 1)
	assert.ErrorIs(t, err, ErrInvalidNodeKind)

	_, err = NewActionNode(testModelID, "stage-1", NodeKindTether, "t", MaxExecutionOrder+1)
	assert.ErrorIs(t, err, ErrInvalidExecutionOrder)
}

func TestNode_SetExecutionOrder(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)

	require.NoError(t, node.SetExecutionOrder(MaxExecutionOrder))
	assert.Equal(t, MaxExecutionOrder, node.Action.ExecutionOrder)

	assert.ErrorIs(t, node.SetExecutionOrder(0), ErrInvalidExecutionOrder)
	assert.ErrorIs(t, node.SetExecutionOrder(2_000_000_000), ErrInvalidExecutionOrder)
	assert.Equal(t, MaxExecutionOrder, node.Action.ExecutionOrder)

	node.Action.ExecutionOrder = MaxExecutionOrder + 1
	assert.False(t, node.Validate().IsValid)
}

func TestNode_Dependencies(t *testing.T) {
	node := newTestStage(t, "stage")

	require.NoError(t, node.AddDependency("a"))
	require.NoError(t, node.AddDependency("b"))

	assert.ErrorIs(t, node.AddDependency(node.ID), ErrSelfDependency)
	assert.ErrorIs(t, node.AddDependency("a"), ErrDuplicateDependency)
	assert.ErrorIs(t, node.AddDependency(""), ErrInvalidID)
	assert.Equal(t, []string{"a", "b"}, node.Dependencies)

	require.NoError(t, node.RemoveDependency("a"))
	assert.ErrorIs(t, node.RemoveDependency("a"), ErrDependencyNotFound)
	assert.Equal(t, []string{"b"}, node.Dependencies)
	assert.True(t, node.DependsOn("b"))
}

func TestNode_TransitionTo(t *testing.T) {
	testCases := []struct {
		name  string
		path  []NodeStatus
		valid bool
	}{
		{name: "draft to active", path: []NodeStatus{NodeStatusActive}, valid: true},
		{name: "active to error and back", path: []NodeStatus{NodeStatusActive, NodeStatusError, NodeStatusActive}, valid: true},
		{name: "inactive reactivated", path: []NodeStatus{NodeStatusActive, NodeStatusInactive, NodeStatusActive}, valid: true},
		{name: "draft to inactive", path: []NodeStatus{NodeStatusInactive}, valid: false},
		{name: "archived is terminal", path: []NodeStatus{NodeStatusArchived, NodeStatusActive}, valid: false},
		{name: "draft to error", path: []NodeStatus{NodeStatusError}, valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node := newTestStage(t, "stage")

			var err error
			for _, next := range tc.path {
				if err = node.TransitionTo(next); err != nil {
					break
				}
			}

			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, tc.path[len(tc.path)-1], node.Status)

				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			var transitionErr *TransitionError
			require.True(t, errors.As(err, &transitionErr))
			assert.Equal(t, "node", transitionErr.Entity)
		})
	}
}

func TestNode_TransitionTo_RejectedLeavesStatus(t *testing.T) {
	node := newTestStage(t, "stage")

	err := node.TransitionTo(NodeStatusInactive)
	require.Error(t, err)
	assert.Equal(t, NodeStatusDraft, node.Status)

	assert.ErrorIs(t, node.TransitionTo(NodeStatus("paused")), ErrInvalidStatus)
}

func TestNode_TransitionAction_RetryBudget(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)
	require.NoError(t, node.SetRetryPolicy(RetryPolicy{MaxAttempts: 1, Strategy: BackoffFixed}))

	for _, next := range []ActionStatus{ActionStatusActive, ActionStatusExecuting, ActionStatusFailed, ActionStatusRetrying, ActionStatusExecuting, ActionStatusFailed} {
		require.NoError(t, node.TransitionAction(next), "transition to %s", next)
	}

	assert.Equal(t, 1, node.Action.Attempts)
	assert.ErrorIs(t, node.TransitionAction(ActionStatusRetrying), ErrRetriesExhausted)

	require.NoError(t, node.TransitionAction(ActionStatusActive))
	assert.Equal(t, 0, node.Action.Attempts)

	assert.ErrorIs(t, node.TransitionAction(ActionStatusCompleted), ErrInvalidTransition)
}

func TestNode_ActionOnlyOperationsOnContainer(t *testing.T) {
	node := newTestStage(t, "stage")

	operations := map[string]func() error{
		"SetPriority":       func() error { return node.SetPriority(3) },
		"SetExecutionOrder": func() error { return node.SetExecutionOrder(2) },
		"SetRetryPolicy":    func() error { return node.SetRetryPolicy(DefaultRetryPolicy()) },
		"SetResources":      func() error { return node.SetResources(ResourceRequirements{CPU: 1}) },
		"TransitionAction":  func() error { return node.TransitionAction(ActionStatusActive) },
		"ActionAttributes": func() error {
			_, err := node.ActionAttributes()

			return err
		},
		"TetherConfig": func() error {
			_, err := node.TetherConfig()

			return err
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), ErrUnsupportedOperation)
		})
	}
}

func TestNode_SetPriority(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)

	require.NoError(t, node.SetPriority(MaxPriority))
	assert.Equal(t, MaxPriority, node.Action.Priority)

	assert.ErrorIs(t, node.SetPriority(0), ErrInvalidPriority)
	assert.ErrorIs(t, node.SetPriority(11), ErrInvalidPriority)
	assert.Equal(t, MaxPriority, node.Action.Priority)
}

func TestNode_SetPayload(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)

	err := node.SetPayload(NodePayload{Tether: &TetherConfig{Connection: &ConnectionConfig{Endpoint: "https://api.example.com"}}})
	require.NoError(t, err)

	cfg, err := node.TetherConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.Connection.Endpoint)

	err = node.SetPayload(NodePayload{Stage: &StageConfig{}})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	err = node.SetPayload(NodePayload{Tether: &TetherConfig{}, Stage: &StageConfig{}})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestNode_Capabilities(t *testing.T) {
	testCases := []struct {
		kind NodeKind
		want Capabilities
	}{
		{NodeKindIO, Capabilities{Transfer: true}},
		{NodeKindStage, Capabilities{Process: true, Transfer: true}},
		{NodeKindTether, Capabilities{Transfer: true}},
		{NodeKindKnowledgeBase, Capabilities{Store: true, Transfer: true}},
		{NodeKindFunctionModelContainer, Capabilities{Process: true, Transfer: true, Nest: true}},
		{NodeKind("unknown"), Capabilities{}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.Capabilities())
			assert.Equal(t, tc.want.Nest, tc.kind.CanNest())
			assert.Equal(t, tc.want.Store, tc.kind.CanStore())
		})
	}
}

func TestNode_Validate_IO(t *testing.T) {
	t.Run("input with dependency and output contract", func(t *testing.T) {
		node, err := NewIONode(testModelID, "in", IODirectionInput, Position{})
		require.NoError(t, err)

		node.Dependencies = []string{"other"}
		node.Payload.IO.OutputContract = map[string]any{"type": "object"}

		result := node.Validate()
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 2)
	})

	t.Run("output without dependencies warns", func(t *testing.T) {
		node, err := NewIONode(testModelID, "out", IODirectionOutput, Position{})
		require.NoError(t, err)

		result := node.Validate()
		assert.True(t, result.IsValid)
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("invalid json schema contract", func(t *testing.T) {
		node, err := NewIONode(testModelID, "in", IODirectionInput, Position{})
		require.NoError(t, err)

		node.Payload.IO.InputContract = map[string]any{"type": 42}

		result := node.Validate()
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Errors[0], "invalid input contract")
	})
}

func TestNode_Validate_NestedModel(t *testing.T) {
	node, err := NewActionNode(testModelID, "stage-1", NodeKindFunctionModelContainer, "sub", 1)
	require.NoError(t, err)

	result := node.Validate()
	assert.False(t, result.IsValid)

	node.Payload.NestedModel.ModelID = testModelID
	result = node.Validate()
	assert.Contains(t, result.Errors, "function-model-container node "+node.ID+" cannot nest its own model")

	node.Payload.NestedModel.ModelID = "model-2"
	result = node.Validate()
	assert.True(t, result.IsValid)
}

func TestNode_Clone_IsDeep(t *testing.T) {
	node := newTestAction(t, "stage-1", 1)
	require.NoError(t, node.AddDependency("x"))
	require.NoError(t, node.AssignRACI(RACI{Responsible: []string{"ops"}}))

	clone := node.Clone()
	clone.Dependencies[0] = "y"
	clone.Action.RACI.Responsible[0] = "dev"
	clone.Action.ExecutionOrder = 9

	assert.Equal(t, "x", node.Dependencies[0])
	assert.Equal(t, "ops", node.Action.RACI.Responsible[0])
	assert.Equal(t, 1, node.Action.ExecutionOrder)
}

func TestNode_Validation_StructTags(t *testing.T) {
	node := newTestStage(t, "stage")
	node.ID = ""

	validate := validator.New()
	err := validate.Struct(node)
	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	found := false

	for _, fieldErr := range validationErrors {
		if fieldErr.Field() == "ID" && fieldErr.Tag() == "required" {
			found = true

			break
		}
	}

	assert.True(t, found, "Should have validation error for required ID field")
}

func TestNode_JSONSerialization(t *testing.T) {
	node := newTestAction(t, "stage-1", 2)
	require.NoError(t, node.AddDependency("stage-0"))

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, node.ID, decoded.ID)
	assert.Equal(t, NodeKindTether, decoded.Kind)
	assert.Equal(t, []string{"stage-0"}, decoded.Dependencies)
	require.NotNil(t, decoded.Action)
	assert.Equal(t, 2, decoded.Action.ExecutionOrder)
	assert.NotNil(t, decoded.Payload.Tether)
	assert.Nil(t, decoded.Payload.Stage)
	assert.True(t, node.CreatedAt.Equal(decoded.CreatedAt))
}
