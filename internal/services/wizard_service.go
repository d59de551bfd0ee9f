package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

// TabStatus is one wizard tab as presented to the UI: reachable or
// not, with the actionable reason when not, and whether it is the tab
// the user should currently be on.
type TabStatus struct {
	Tab     wizard.Tab `json:"tab"`
	Enabled bool       `json:"enabled"`
	Reason  string     `json:"reason,omitempty"`
	Active  bool       `json:"active"`
}

// WizardService is the facade the HTTP transport talks to. It
// gate-checks every mutating action before the collaborator is called,
// so a request that the UI should never have allowed fails as a
// GateViolationError instead of reaching the platform, and it feeds
// confirmed collaborator responses into the transition controller.
type WizardService struct {
	platform   PlatformAPI
	controller *wizard.Controller
	logger     *slog.Logger
}

// NewWizardService creates the service over a platform client and a
// transition controller.
func NewWizardService(platform PlatformAPI, controller *wizard.Controller, logger *slog.Logger) *WizardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WizardService{
		platform:   platform,
		controller: controller,
		logger:     logger.With(slog.String("component", "services.wizard")),
	}
}

// Tabs returns the gate verdict for every wizard tab.
func (s *WizardService) Tabs() []TabStatus {
	snap := s.controller.Session().Snapshot()
	active := s.controller.ActiveTab()

	statuses := make([]TabStatus, 0, len(wizard.TabOrder))
	for _, tab := range wizard.TabOrder {
		statuses = append(statuses, TabStatus{
			Tab:     tab,
			Enabled: wizard.TabEnabled(tab, snap),
			Reason:  wizard.DisabledReason(tab, snap),
			Active:  tab == active,
		})
	}
	return statuses
}

// Snapshot returns the current session state.
func (s *WizardService) Snapshot() wizard.Snapshot {
	return s.controller.Session().Snapshot()
}

// ActiveTab returns the tab the UI should currently show.
func (s *WizardService) ActiveTab() wizard.Tab {
	return s.controller.ActiveTab()
}

// Upload stores a new dataset on the platform and resets the session
// around it. Always allowed: the upload tab has no preconditions.
func (s *WizardService) Upload(ctx context.Context, filename string, file io.Reader) (wizard.Snapshot, error) {
	result, err := s.platform.Upload(ctx, filename, file)
	if err != nil {
		return s.Snapshot(), err
	}
	if result.DatasetID == "" {
		return s.Snapshot(), fmt.Errorf("%w: upload response carried no dataset id", ErrInvalidInput)
	}

	return s.apply(ctx, wizard.Event{
		Type:      wizard.EventUploadCompleted,
		DatasetID: result.DatasetID,
		Overview:  result.Overview,
	})
}

// Preview serves the preview for the requested stage, falling back to
// the latest reachable stage when needed.
func (s *WizardService) Preview(ctx context.Context, stage wizard.ProcessingStage) (*wizard.PreviewEntry, error) {
	return s.controller.PreviewFor(ctx, stage)
}

// RefreshPreview bypasses the cache for the resolved stage.
func (s *WizardService) RefreshPreview(ctx context.Context, stage wizard.ProcessingStage) (*wizard.PreviewEntry, error) {
	return s.controller.RefreshPreview(ctx, stage)
}

// Clean asks the platform to handle missing values with the given
// strategy. Requires a dataset (explore tab reachable).
func (s *WizardService) Clean(ctx context.Context, strategy domain.MissingValueStrategy) (wizard.Snapshot, error) {
	snap := s.Snapshot()
	if err := s.requireTab(wizard.TabExplore, snap); err != nil {
		return snap, err
	}
	if !strategy.Valid() {
		return snap, fmt.Errorf("%w: %q", ErrInvalidStrategy, strategy)
	}

	result, err := s.platform.HandleMissingValues(ctx, snap.DatasetID, strategy)
	if err != nil {
		return snap, err
	}

	return s.apply(ctx, wizard.Event{
		Type:      wizard.EventMissingValuesHandled,
		DatasetID: snap.DatasetID,
		Overview:  result.Overview,
	})
}

// SaveFeatures confirms the target column and feature columns on the
// platform. Requires the features tab to be reachable.
func (s *WizardService) SaveFeatures(ctx context.Context, targetColumn string, columnsToKeep []string) (wizard.Snapshot, error) {
	snap := s.Snapshot()
	if err := s.requireTab(wizard.TabFeatures, snap); err != nil {
		return snap, err
	}
	if targetColumn == "" || len(columnsToKeep) == 0 {
		return snap, fmt.Errorf("%w: target column and at least one feature column are required", ErrInvalidInput)
	}

	confirmed, err := s.platform.SaveFeatures(ctx, domain.FeatureSelection{
		DatasetID:     snap.DatasetID,
		TargetColumn:  targetColumn,
		ColumnsToKeep: columnsToKeep,
	})
	if err != nil {
		return snap, err
	}

	return s.apply(ctx, wizard.Event{
		Type:          wizard.EventFeaturesSaved,
		DatasetID:     snap.DatasetID,
		TargetColumn:  confirmed.TargetColumn,
		ColumnsToKeep: confirmed.ColumnsToKeep,
	})
}

// Preprocess runs normalization and balancing on the platform.
// Requires the preprocess tab to be reachable.
func (s *WizardService) Preprocess(ctx context.Context, normalization, balancing string) (wizard.Snapshot, error) {
	snap := s.Snapshot()
	if err := s.requireTab(wizard.TabPreprocess, snap); err != nil {
		return snap, err
	}

	if _, err := s.platform.Preprocess(ctx, snap.DatasetID, normalization, balancing); err != nil {
		return snap, err
	}

	return s.apply(ctx, wizard.Event{
		Type:      wizard.EventPreprocessCompleted,
		DatasetID: snap.DatasetID,
	})
}

// requireTab is the defensive assertion behind every gated action.
func (s *WizardService) requireTab(tab wizard.Tab, snap wizard.Snapshot) error {
	if wizard.TabEnabled(tab, snap) {
		return nil
	}
	return &wizard.GateViolationError{Tab: tab, Reason: wizard.DisabledReason(tab, snap)}
}

// apply feeds a confirmed event into the controller. An out-of-order
// event has already been logged and dropped there; from the caller's
// perspective the platform action succeeded, so the current snapshot is
// returned without an error.
func (s *WizardService) apply(ctx context.Context, ev wizard.Event) (wizard.Snapshot, error) {
	snap, err := s.controller.Apply(ctx, ev)
	if err != nil {
		var invalid *wizard.InvalidTransitionError
		if errors.As(err, &invalid) {
			return snap, nil
		}
		return snap, err
	}
	return snap, nil
}
