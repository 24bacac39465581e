package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHelpers_MatchWrappedErrors(t *testing.T) {
	invalid := NewInvalidArgumentError("user id is required")
	wrapped := fmt.Errorf("create subscription: %w", invalid)

	assert.True(t, IsInvalidArgumentError(wrapped))
	assert.False(t, IsValidationError(wrapped))
	assert.False(t, IsConstraintViolationError(wrapped))
}

func TestConstraintViolationError_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("duplicate key value violates unique constraint")
	err := NewConstraintViolationError("user already exists", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "user already exists: duplicate key value violates unique constraint", err.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation},
		{"invalid argument", NewInvalidArgumentError("bad call"), ErrorTypeInvalidArgument},
		{"constraint", NewConstraintViolationError("dup", nil), ErrorTypeConstraintViolation},
		{"internal", NewInternalError("db down"), ErrorTypeInternal},
		{"wrapped constraint", fmt.Errorf("create: %w", NewConstraintViolationError("dup", nil)), ErrorTypeConstraintViolation},
		{"plain", stderrors.New("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "constraint_violation", ErrorTypeConstraintViolation.String())
	assert.Equal(t, "internal", ErrorTypeInternal.String())
}
