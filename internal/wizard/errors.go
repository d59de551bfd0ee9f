package wizard

import (
	"fmt"
)

// PreviewFetchError wraps a failed preview fetch. Recoverable: the user
// can retry via Refresh, and other cached stages stay usable. A failed
// fetch is never cached.
type PreviewFetchError struct {
	DatasetID string
	Stage     ProcessingStage
	Err       error
}

// Error implements the error interface.
func (e *PreviewFetchError) Error() string {
	return fmt.Sprintf("preview fetch failed for dataset %s stage %s: %v", e.DatasetID, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PreviewFetchError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError marks an out-of-order platform event. It is
// logged for diagnostics and the event is dropped; the user never sees
// it and the session stage is left untouched.
type InvalidTransitionError struct {
	Event     EventType
	From      ProcessingStage
	DatasetID string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %s is not legal from stage %s", e.Event, e.From)
}

// GateViolationError reports that a caller invoked an action gated by a
// tab the stage gate reports as disabled. This is a programming error
// in the caller (the UI should never allow it), surfaced as a defensive
// assertion rather than a user-facing message.
type GateViolationError struct {
	Tab    Tab
	Reason string
}

// Error implements the error interface.
func (e *GateViolationError) Error() string {
	return fmt.Sprintf("action blocked by disabled tab %s: %s", e.Tab, e.Reason)
}
