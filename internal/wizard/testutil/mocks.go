// Package testutil provides mock collaborators for wizard tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

// MockPreviewFetcher is a scriptable preview collaborator. Pages and
// errors are keyed by "datasetID:stage". Unknown keys serve a default
// two-column page so simple tests need no setup.
type MockPreviewFetcher struct {
	mu    sync.Mutex
	calls []string

	Pages map[string]*domain.PreviewPage
	Errs  map[string]error

	// Gate, when set, blocks every fetch until the gate channel is
	// closed. Used to hold fetches in flight for concurrency tests.
	Gate chan struct{}
}

// NewMockPreviewFetcher creates an empty mock fetcher.
func NewMockPreviewFetcher() *MockPreviewFetcher {
	return &MockPreviewFetcher{
		Pages: make(map[string]*domain.PreviewPage),
		Errs:  make(map[string]error),
	}
}

// Key builds the scripting key for a dataset and stage.
func Key(datasetID string, stage wizard.ProcessingStage) string {
	return datasetID + ":" + string(stage)
}

// SetPage scripts the response for one (dataset, stage) pair.
func (f *MockPreviewFetcher) SetPage(datasetID string, stage wizard.ProcessingStage, page *domain.PreviewPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pages[Key(datasetID, stage)] = page
}

// SetErr scripts a failure for one (dataset, stage) pair.
func (f *MockPreviewFetcher) SetErr(datasetID string, stage wizard.ProcessingStage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errs[Key(datasetID, stage)] = err
}

// Preview implements wizard.PreviewFetcher.
func (f *MockPreviewFetcher) Preview(ctx context.Context, datasetID string, stage wizard.ProcessingStage) (*domain.PreviewPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Key(datasetID, stage))
	gate := f.Gate
	err := f.Errs[Key(datasetID, stage)]
	page := f.Pages[Key(datasetID, stage)]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if page != nil {
		return page, nil
	}
	return &domain.PreviewPage{
		Rows: []domain.PreviewRow{
			{"a": 1, "b": fmt.Sprintf("%s-%s", datasetID, stage)},
		},
		Columns:    []string{"a", "b"},
		NumRows:    1,
		NumColumns: 2,
	}, nil
}

// Calls returns a copy of the fetch log, in call order.
func (f *MockPreviewFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many fetches hit the given key.
func (f *MockPreviewFetcher) CallCount(datasetID string, stage wizard.ProcessingStage) int {
	key := Key(datasetID, stage)
	n := 0
	for _, c := range f.Calls() {
		if c == key {
			n++
		}
	}
	return n
}

// BroadcastedStageChange records one stage-change broadcast.
type BroadcastedStageChange struct {
	DatasetID string
	Stage     string
	Event     string
	Payload   interface{}
}

// BroadcastedError records one error broadcast.
type BroadcastedError struct {
	Code        string
	Message     string
	Details     string
	Step        string
	Recoverable bool
}

// MockHub records stage-change and error broadcasts.
type MockHub struct {
	mu      sync.Mutex
	updates []BroadcastedStageChange
	errors  []BroadcastedError
}

// BroadcastStageChange implements wizard.StageHub.
func (h *MockHub) BroadcastStageChange(datasetID, stage, event string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, BroadcastedStageChange{
		DatasetID: datasetID,
		Stage:     stage,
		Event:     event,
		Payload:   payload,
	})
}

// BroadcastError implements wizard.StageHub.
func (h *MockHub) BroadcastError(code, message, details, step string, recoverable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, BroadcastedError{
		Code:        code,
		Message:     message,
		Details:     details,
		Step:        step,
		Recoverable: recoverable,
	})
}

// Updates returns a copy of the recorded stage-change broadcasts.
func (h *MockHub) Updates() []BroadcastedStageChange {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]BroadcastedStageChange(nil), h.updates...)
}

// Errors returns a copy of the recorded error broadcasts.
func (h *MockHub) Errors() []BroadcastedError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]BroadcastedError(nil), h.errors...)
}
