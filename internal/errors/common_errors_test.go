package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("platform unreachable", cause)

	assert.Equal(t, "[NETWORK] platform unreachable: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAppErrorWithoutCause(t *testing.T) {
	err := NewAppValidationError("empty column list")
	assert.Equal(t, "[VALIDATION] empty column list", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewPlatformError("preview request failed", errors.New("502")).
		WithContext("dataset_id", "d1").
		WithContext("stage", "cleaned")

	assert.Equal(t, "d1", err.Context["dataset_id"])
	assert.Equal(t, "cleaned", err.Context["stage"])
}

func TestAppErrorIsAs(t *testing.T) {
	cause := errors.New("boom")
	wrapped := NewStorageError("cache write failed", cause)

	assert.True(t, errors.Is(wrapped, cause))

	var appErr *AppError
	require.True(t, errors.As(error(wrapped), &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestHelperTypes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"network", NewNetworkError("x", nil), ErrTypeNetwork},
		{"parsing", NewParsingError("x", nil), ErrTypeParsing},
		{"storage", NewStorageError("x", nil), ErrTypeStorage},
		{"not found", NewNotFoundError("dataset"), ErrTypeNotFound},
		{"permission", NewPermissionError("x"), ErrTypePermission},
		{"config", NewConfigError("x", nil), ErrTypeConfig},
		{"platform", NewPlatformError("x", nil), ErrTypePlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
		})
	}
}
