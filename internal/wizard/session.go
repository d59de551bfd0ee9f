package wizard

import (
	"sync"
	"time"

	"automlcli/pkg/contracts/domain"
)

// Snapshot is an immutable view of a session, safe to hand to the pure
// gate functions and to serialize for the UI. Cross-cutting consumers
// receive a Snapshot instead of reaching into shared mutable state.
type Snapshot struct {
	DatasetID     string                  `json:"dataset_id,omitempty"`
	TargetColumn  string                  `json:"target_column,omitempty"`
	ColumnsToKeep []string                `json:"columns_to_keep,omitempty"`
	Stage         ProcessingStage         `json:"processing_stage"`
	Overview      *domain.DatasetOverview `json:"overview,omitempty"`
}

// Session holds the state of one in-progress dataset preparation flow.
// It is created when the user lands on the wizard and replaced wholesale
// when a new upload arrives. Only the Controller mutates it, and only in
// response to confirmed platform responses.
type Session struct {
	mu sync.RWMutex

	datasetID     string
	targetColumn  string
	columnsToKeep []string
	stage         ProcessingStage
	overview      *domain.DatasetOverview
	createdAt     time.Time
	updatedAt     time.Time
}

// NewSession creates a fresh session with no dataset.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		stage:     StageNone,
		createdAt: now,
		updatedAt: now,
	}
}

// Snapshot returns an immutable copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		DatasetID:    s.datasetID,
		TargetColumn: s.targetColumn,
		Stage:        s.stage,
	}
	if len(s.columnsToKeep) > 0 {
		snap.ColumnsToKeep = append([]string(nil), s.columnsToKeep...)
	}
	if s.overview != nil {
		ov := *s.overview
		snap.Overview = &ov
	}
	return snap
}

// Stage returns the confirmed processing stage.
func (s *Session) Stage() ProcessingStage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// DatasetID returns the current dataset identifier, empty when no
// dataset has been uploaded yet.
func (s *Session) DatasetID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.datasetID
}

// reset replaces the session content for a brand-new upload. Feature
// selections from the previous dataset do not survive the replacement.
func (s *Session) reset(datasetID string, overview *domain.DatasetOverview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasetID = datasetID
	s.targetColumn = ""
	s.columnsToKeep = nil
	s.stage = StageRaw
	s.overview = cloneOverview(overview)
	s.updatedAt = time.Now()
}

// setStage advances the confirmed stage. Callers are responsible for
// having validated the transition.
func (s *Session) setStage(stage ProcessingStage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	s.updatedAt = time.Now()
}

// setOverview replaces the overview statistics after a confirmed
// server-side restage.
func (s *Session) setOverview(overview *domain.DatasetOverview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overview = cloneOverview(overview)
	s.updatedAt = time.Now()
}

// setSelection records the confirmed target column and feature columns.
func (s *Session) setSelection(targetColumn string, columnsToKeep []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetColumn = targetColumn
	s.columnsToKeep = append([]string(nil), columnsToKeep...)
	s.updatedAt = time.Now()
}

func cloneOverview(o *domain.DatasetOverview) *domain.DatasetOverview {
	if o == nil {
		return nil
	}
	clone := *o
	if len(o.NumericalFeatures) > 0 {
		clone.NumericalFeatures = append([]string(nil), o.NumericalFeatures...)
	}
	if len(o.CategoricalFeatures) > 0 {
		clone.CategoricalFeatures = append([]string(nil), o.CategoricalFeatures...)
	}
	return &clone
}
