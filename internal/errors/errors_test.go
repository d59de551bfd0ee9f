package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
	assert.Equal(t, "bad input", err.Message)
	assert.Nil(t, err.Details)
	assert.Equal(t, "bad input", err.Error())
}

func TestNewWithDetails(t *testing.T) {
	details := map[string]string{"field": "stage"}
	err := NewWithDetails(http.StatusConflict, "GATE_VIOLATION", "not yet", details)

	assert.Equal(t, http.StatusConflict, err.StatusCode)
	assert.Equal(t, details, err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("strategy", "unknown strategy")

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)

	ve, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "strategy", ve.Field)
	assert.Equal(t, "unknown strategy", ve.Message)
}

func TestAPIErrorJSON(t *testing.T) {
	err := NewWithDetails(http.StatusBadGateway, "PLATFORM_ERROR", "upstream failed", "timeout")

	data, jsonErr := json.Marshal(err)
	require.NoError(t, jsonErr)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(http.StatusBadGateway), decoded["status_code"])
	assert.Equal(t, "PLATFORM_ERROR", decoded["error_code"])
	assert.Equal(t, "upstream failed", decoded["message"])
	assert.Equal(t, "timeout", decoded["details"])
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"not found", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"dataset not found", ErrDatasetNotFound, http.StatusNotFound, "DATASET_NOT_FOUND"},
		{"conflict", ErrConflict, http.StatusConflict, "CONFLICT"},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"internal", ErrInternalServer, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
		{"platform", ErrPlatformUnavailable, http.StatusBadGateway, "PLATFORM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.ErrorCode)
}

func TestInvalidRequestWithError(t *testing.T) {
	err := InvalidRequestWithError(assert.AnError)

	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
	assert.Equal(t, assert.AnError.Error(), err.Details)
}

func TestNewValidationErrors(t *testing.T) {
	err := NewValidationErrors([]ValidationError{
		{Field: "target_column", Message: "required"},
		{Field: "columns_to_keep", Message: "must not be empty"},
	})

	ves, ok := err.Details.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, ves.Errors, 2)
}
