package wizard

import (
	"context"

	"automlcli/pkg/contracts/domain"
)

// PreviewFetcher fetches one preview page from the platform preview
// collaborator. Implementations surface a terminal success or failure
// per call with no automatic retry.
type PreviewFetcher interface {
	Preview(ctx context.Context, datasetID string, stage ProcessingStage) (*domain.PreviewPage, error)
}

// StageHub is the subscription point for stage changes and wizard
// error notifications. The websocket hub implements it; tests
// substitute a mock.
type StageHub interface {
	BroadcastStageChange(datasetID, stage, event string, payload interface{})
	BroadcastError(code, message, details, step string, recoverable bool)
}
