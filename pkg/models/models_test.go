package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requiredTag = "required"
	maxTag      = "max"
	lteTag      = "lte"
)

func hasFieldError(err error, field, tag string) bool {
	var target validator.ValidationErrors
	if !errors.As(err, &target) {
		return false
	}

	for _, fieldErr := range target {
		if fieldErr.Field() == field && fieldErr.Tag() == tag {
			return true
		}
	}

	return false
}

// FunctionModel Tests

func TestFunctionModel_Validation_ValidModel(t *testing.T) {
	model, err := NewFunctionModel("Billing", "Monthly billing run", "alice")
	require.NoError(t, err)

	validate := validator.New()
	assert.NoError(t, validate.Struct(model))
}

func TestFunctionModel_Validation_MissingFields(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*FunctionModel)
		field  string
		tag    string
	}{
		{name: "missing id", mutate: func(m *FunctionModel) { m.ID = "" }, field: "ID", tag: requiredTag},
		{name: "missing name", mutate: func(m *FunctionModel) { m.Name = "" }, field: "Name", tag: requiredTag},
		{name: "missing status", mutate: func(m *FunctionModel) { m.Status = "" }, field: "Status", tag: requiredTag},
		{name: "name too long", mutate: func(m *FunctionModel) { m.Name = string(make([]byte, 201)) }, field: "Name", tag: maxTag},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			model, err := NewFunctionModel("Billing", "", "alice")
			require.NoError(t, err)

			tc.mutate(model)

			validate := validator.New()
			err = validate.Struct(model)
			assert.Error(t, err)
			assert.True(t, hasFieldError(err, tc.field, tc.tag), "Should have %s validation error for %s", tc.tag, tc.field)
		})
	}
}

func TestFunctionModel_JSONSerialization(t *testing.T) {
	f := newModelFixture(t)
	require.NoError(t, f.model.Publish())

	data, err := json.Marshal(f.model)
	require.NoError(t, err)

	var decoded FunctionModel
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, f.model.ID, decoded.ID)
	assert.Equal(t, ModelStatusPublished, decoded.Status)
	assert.Equal(t, 1, decoded.Version)
	assert.Len(t, decoded.Nodes, 3)
	assert.Len(t, decoded.ActionNodes, 1)
	assert.Equal(t, []string{f.stage.ID}, decoded.Nodes[f.output.ID].Dependencies)
	assert.Equal(t, 1, decoded.ActionNodes[f.action.ID].Action.ExecutionOrder)
	require.NotNil(t, decoded.PublishedAt)
	assert.True(t, f.model.PublishedAt.Equal(*decoded.PublishedAt))
}

// CrossFeatureLink Tests

func TestCrossFeatureLink_Validation(t *testing.T) {
	link, err := NewCrossFeatureLink(
		LinkEndpoint{Feature: FeatureFunctionModel, EntityID: "m"},
		LinkEndpoint{Feature: FeatureSpindle, EntityID: "s"},
		LinkTypeSupports, 0.3, "alice")
	require.NoError(t, err)

	validate := validator.New()
	assert.NoError(t, validate.Struct(link))

	link.Strength = 1.5
	err = validate.Struct(link)
	assert.True(t, hasFieldError(err, "Strength", lteTag))

	link.Strength = 1
	link.Target.EntityID = ""
	err = validate.Struct(link)
	assert.True(t, hasFieldError(err, "EntityID", requiredTag))
}

func TestCrossFeatureLink_JSONSerialization(t *testing.T) {
	link, err := NewCrossFeatureLink(
		LinkEndpoint{Feature: FeatureFunctionModel, EntityID: "m", NodeID: "n"},
		LinkEndpoint{Feature: FeatureKnowledgeBase, EntityID: "kb"},
		LinkTypeDocuments, 0.75, "alice")
	require.NoError(t, err)

	data, err := json.Marshal(link)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "documents", raw["type"])
	assert.InDelta(t, 0.75, raw["strength"], 1e-9)

	var decoded CrossFeatureLink
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, link.Source, decoded.Source)
	assert.Equal(t, link.Target, decoded.Target)
}
