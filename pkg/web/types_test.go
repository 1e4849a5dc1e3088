package web_test

import (
	"errors"
	"testing"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFieldErrors(t *testing.T, err error, fields []string) {
	t.Helper()

	require.Error(t, err)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		t.Fatalf("Expected validator.ValidationErrors, got %T", err)
	}

	errorFields := make(map[string]bool)
	for _, fieldErr := range validationErrors {
		errorFields[fieldErr.Field()] = true
	}

	for _, expectedField := range fields {
		assert.True(t, errorFields[expectedField], "Expected validation error for field %s", expectedField)
	}
}

func TestCreateNodeRequest_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())
	priority := 11

	tests := []struct {
		name      string
		request   web.CreateNodeRequest
		wantErr   bool
		errFields []string
	}{
		{
			name:    "valid container",
			request: web.CreateNodeRequest{Kind: "io", Name: "orders in", Direction: "input"},
		},
		{
			name:    "valid action",
			request: web.CreateNodeRequest{Kind: "tether", Name: "call", ParentID: "stage-1", ExecutionOrder: 1},
		},
		{
			name:      "unknown kind",
			request:   web.CreateNodeRequest{Kind: "robot", Name: "x"},
			wantErr:   true,
			errFields: []string{"Kind"},
		},
		{
			name:      "missing name",
			request:   web.CreateNodeRequest{Kind: "stage"},
			wantErr:   true,
			errFields: []string{"Name"},
		},
		{
			name:      "bad direction",
			request:   web.CreateNodeRequest{Kind: "io", Name: "x", Direction: "sideways"},
			wantErr:   true,
			errFields: []string{"Direction"},
		},
		{
			name:      "priority out of range",
			request:   web.CreateNodeRequest{Kind: "tether", Name: "x", Priority: &priority},
			wantErr:   true,
			errFields: []string{"Priority"},
		},
		{
			name:      "blank dependency",
			request:   web.CreateNodeRequest{Kind: "stage", Name: "x", Dependencies: []string{""}},
			wantErr:   true,
			errFields: []string{"Dependencies[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.Struct(tt.request)
			if tt.wantErr {
				assertFieldErrors(t, err, tt.errFields)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateNodeRequest_Conversion(t *testing.T) {
	t.Parallel()

	req := web.CreateNodeRequest{
		Kind:           "knowledge-base",
		Name:           "lookup",
		ParentID:       "stage-1",
		ExecutionOrder: 2,
		Dependencies:   []string{"a"},
	}

	assert.True(t, req.IsAction())

	action := req.ActionRequest()
	assert.Equal(t, "stage-1", action.ParentID)
	assert.Equal(t, 2, action.ExecutionOrder)
	assert.Equal(t, []string{"a"}, action.Dependencies)

	container := web.CreateNodeRequest{Kind: "stage", Name: "validate", Direction: "input"}
	assert.False(t, container.IsAction())
	assert.Equal(t, "validate", container.ContainerRequest().Name)
}

func TestNodeStatusRequest_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, v.Struct(web.NodeStatusRequest{Status: "active"}))
	assert.NoError(t, v.Struct(web.NodeStatusRequest{ActionStatus: "executing"}))
	assertFieldErrors(t, v.Struct(web.NodeStatusRequest{}), []string{"Status", "ActionStatus"})
	assertFieldErrors(t, v.Struct(web.NodeStatusRequest{Status: "active", ActionStatus: "active"}), []string{"Status"})
}

func TestValidateGraphRequest_Validation(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRequiredStructEnabled())

	assert.NoError(t, v.Struct(web.ValidateGraphRequest{Edges: []models.Edge{{Source: "a", Target: "b"}}}))
	assertFieldErrors(t, v.Struct(web.ValidateGraphRequest{Edges: []models.Edge{{Source: "a"}}}), []string{"Target"})
	assertFieldErrors(t, v.Struct(web.AddDependencyRequest{}), []string{"DependencyID"})
}
