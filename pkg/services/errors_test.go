package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/flowmodel/pkg/models"
	"github.com/dukex/flowmodel/pkg/persistence"
	"github.com/dukex/flowmodel/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "model not found", err: persistence.NewModelError("GetByID", "m1", persistence.ErrModelNotFound), wantCode: CodeNotFound},
		{name: "node not found", err: fmt.Errorf("%w: n1", models.ErrNodeNotFound), wantCode: CodeNotFound},
		{name: "transition", err: &models.TransitionError{Entity: "model", From: "archived", To: "published"}, wantCode: CodeConflict},
		{name: "not editable", err: models.ErrModelNotEditable, wantCode: CodeConflict},
		{name: "invalid name", err: models.ErrInvalidName, wantCode: CodeValidation},
		{name: "invalid graph", err: &GraphInvalidError{Report: validation.GraphReport{Errors: []string{"cycle"}}}, wantCode: CodeInvalidGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("Op", tt.err)

			var serviceErr *ServiceError
			require.ErrorAs(t, err, &serviceErr)
			assert.Equal(t, tt.wantCode, serviceErr.Code)
			assert.Equal(t, "Op", serviceErr.Op)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_Internal(t *testing.T) {
	cause := errors.New("connection reset")
	err := classify("FunctionModels.Save", cause)

	var serviceErr *ServiceError
	assert.False(t, errors.As(err, &serviceErr))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "FunctionModels.Save: connection reset", err.Error())

	assert.NoError(t, classify("Op", nil))
}

func TestClassify_KeepsServiceError(t *testing.T) {
	original := NewValidationError("Op", CodeValidation, "bad input", ErrInvalidRequest)

	assert.Same(t, original, classify("Other", original))
	assert.Equal(t, "Op: bad input", original.Error())
}

func TestGraphInvalidError(t *testing.T) {
	err := &GraphInvalidError{Report: validation.GraphReport{Errors: []string{"no input", "cycle a -> b"}}}

	assert.ErrorIs(t, err, ErrGraphInvalid)
	assert.Equal(t, "graph validation failed: no input; cycle a -> b", err.Error())
	assert.True(t, IsValidationError(err))
	assert.False(t, IsConflictError(err))
}

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()

	unlock := locks.lock("a")
	assert.Len(t, locks.locks, 1)

	unlockOther := locks.lock("b")
	assert.Len(t, locks.locks, 2)

	unlock()
	unlockOther()
	assert.Empty(t, locks.locks)
}
