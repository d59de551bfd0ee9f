package services

import (
	"errors"
	"fmt"
)

// Wizard service errors
var (
	ErrInvalidStrategy = errors.New("invalid missing-value strategy")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoDataset       = errors.New("no dataset uploaded")
)

// CollaboratorError reports a non-success response from one of the
// platform collaborators. Each call is terminal: there is no automatic
// retry, the caller decides whether to try again.
type CollaboratorError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *CollaboratorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("platform %s returned %d", e.Endpoint, e.StatusCode)
}
