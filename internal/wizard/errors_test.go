package wizard_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"automlcli/internal/wizard"
)

func TestPreviewFetchErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &wizard.PreviewFetchError{DatasetID: "d1", Stage: wizard.StageCleaned, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cleaned")
	assert.Contains(t, err.Error(), "d1")
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &wizard.InvalidTransitionError{Event: wizard.EventFeaturesSaved, From: wizard.StageRaw}
	assert.Contains(t, err.Error(), string(wizard.EventFeaturesSaved))
	assert.Contains(t, err.Error(), string(wizard.StageRaw))
}

func TestGateViolationErrorMessage(t *testing.T) {
	err := &wizard.GateViolationError{Tab: wizard.TabPreprocess, Reason: "missing selection"}
	msg := fmt.Sprintf("%v", err)
	assert.Contains(t, msg, "preprocess")
	assert.Contains(t, msg, "missing selection")
}
