package http

import (
	"context"
	"io"

	"automlcli/internal/services"
	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

// WizardServiceInterface defines the wizard operations the handlers
// depend on. services.WizardService implements it; tests use a mock.
type WizardServiceInterface interface {
	Tabs() []services.TabStatus
	Snapshot() wizard.Snapshot
	ActiveTab() wizard.Tab
	Upload(ctx context.Context, filename string, file io.Reader) (wizard.Snapshot, error)
	Preview(ctx context.Context, stage wizard.ProcessingStage) (*wizard.PreviewEntry, error)
	RefreshPreview(ctx context.Context, stage wizard.ProcessingStage) (*wizard.PreviewEntry, error)
	Clean(ctx context.Context, strategy domain.MissingValueStrategy) (wizard.Snapshot, error)
	SaveFeatures(ctx context.Context, targetColumn string, columnsToKeep []string) (wizard.Snapshot, error)
	Preprocess(ctx context.Context, normalization, balancing string) (wizard.Snapshot, error)
}
