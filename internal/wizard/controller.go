package wizard

import (
	"context"
	"log/slog"
	"sync"
)

// StageChange is the payload broadcast to subscribers whenever a
// transition is applied.
type StageChange struct {
	DatasetID string          `json:"dataset_id"`
	Stage     ProcessingStage `json:"stage"`
	ActiveTab Tab             `json:"active_tab"`
	Event     EventType       `json:"event"`
}

// Controller is the transition controller: the only writer of the
// session. It applies confirmed platform responses as stage
// transitions, advances the active tab one step at a time, keeps the
// preview cache consistent across dataset replacement, and broadcasts
// stage changes to subscribers.
type Controller struct {
	session *Session
	cache   *PreviewCache
	hub     StageHub
	logger  *slog.Logger
	tracer  *Tracer
	metrics *Metrics

	mu        sync.Mutex
	activeTab Tab
}

// NewController creates a controller over the given session and cache.
// hub may be nil when no subscribers exist (tests).
func NewController(session *Session, cache *PreviewCache, hub StageHub, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		session:   session,
		cache:     cache,
		hub:       hub,
		logger:    logger.With(slog.String("component", "wizard.controller")),
		tracer:    NewTracer(),
		activeTab: TabUpload,
	}
}

// SetMetrics attaches business metrics. Optional.
func (c *Controller) SetMetrics(m *Metrics) {
	c.metrics = m
	if c.cache != nil {
		c.cache.SetMetrics(m)
	}
}

// Session returns the controlled session for read access.
func (c *Controller) Session() *Session {
	return c.session
}

// Cache returns the preview cache backing this controller.
func (c *Controller) Cache() *PreviewCache {
	return c.cache
}

// ActiveTab returns the tab the UI should currently show.
func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

// Apply feeds one confirmed platform event into the state machine and
// returns the resulting snapshot. Out-of-order events leave the session
// untouched and return an InvalidTransitionError; callers log it at
// most, the user never sees it.
func (c *Controller) Apply(ctx context.Context, ev Event) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.session.Snapshot()
	ctx, span := c.tracer.TraceTransition(ctx, ev, before.Stage)
	defer span.End()

	if err := c.apply(ctx, ev, before); err != nil {
		c.metrics.recordDropped(ctx, ev.Type, before.Stage)
		c.tracer.RecordTransitionOutcome(span, before.Stage, err)
		c.logger.WarnContext(ctx, "dropped out-of-order platform event",
			slog.String("event", string(ev.Type)),
			slog.String("stage", string(before.Stage)),
			slog.String("dataset_id", ev.DatasetID))
		return before, err
	}

	after := c.session.Snapshot()
	c.advanceTab(before, after)
	c.metrics.recordTransition(ctx, ev.Type, after.Stage)
	c.tracer.RecordTransitionOutcome(span, after.Stage, nil)

	c.logger.InfoContext(ctx, "stage transition applied",
		slog.String("event", string(ev.Type)),
		slog.String("from", string(before.Stage)),
		slog.String("to", string(after.Stage)),
		slog.String("dataset_id", after.DatasetID),
		slog.String("active_tab", string(c.activeTab)))

	if c.hub != nil {
		c.hub.BroadcastStageChange(after.DatasetID, string(after.Stage), string(ev.Type), StageChange{
			DatasetID: after.DatasetID,
			Stage:     after.Stage,
			ActiveTab: c.activeTab,
			Event:     ev.Type,
		})
	}
	return after, nil
}

// apply validates the edge and mutates the session. The caller holds
// the controller lock.
func (c *Controller) apply(ctx context.Context, ev Event, before Snapshot) error {
	// A stale event for a replaced dataset can arrive after a new
	// upload; everything but the upload event itself must match the
	// current dataset.
	if ev.Type != EventUploadCompleted && ev.DatasetID != "" && ev.DatasetID != before.DatasetID {
		return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
	}

	switch ev.Type {
	case EventUploadCompleted:
		if ev.DatasetID == "" {
			return &InvalidTransitionError{Event: ev.Type, From: before.Stage}
		}
		if before.DatasetID != "" {
			c.cache.InvalidateDataset(before.DatasetID)
		}
		c.session.reset(ev.DatasetID, ev.Overview)
		// The confirmed overview saying there is nothing to clean means
		// the platform stages the cleaned view without an explicit
		// missing-value call.
		if ev.Overview != nil && ev.Overview.TotalMissingValues == 0 {
			c.session.setStage(StageCleaned)
			c.logger.InfoContext(ctx, "dataset has no missing values, cleaning stage skipped",
				slog.String("dataset_id", ev.DatasetID))
		}
		return nil

	case EventMissingValuesHandled:
		if before.Stage != StageRaw {
			return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
		}
		if ev.Overview != nil {
			c.session.setOverview(ev.Overview)
		}
		c.session.setStage(StageCleaned)
		return nil

	case EventFeaturesSaved:
		if before.Stage != StageCleaned {
			return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
		}
		if ev.TargetColumn == "" || len(ev.ColumnsToKeep) == 0 {
			return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
		}
		c.session.setSelection(ev.TargetColumn, ev.ColumnsToKeep)
		c.session.setStage(StageFinal)
		return nil

	case EventPreprocessCompleted:
		if before.Stage != StageFinal {
			return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
		}
		c.session.setStage(StageProcessed)
		return nil
	}

	return &InvalidTransitionError{Event: ev.Type, From: before.Stage, DatasetID: ev.DatasetID}
}

// advanceTab moves the active tab to the first tab in order that is
// enabled now but was not before the event: exactly one step, never a
// jump to the final tab even when several tabs unlock at once. When the
// current tab got disabled (dataset replaced) it falls back to the last
// still-enabled tab.
func (c *Controller) advanceTab(before, after Snapshot) {
	for _, tab := range TabOrder {
		if TabEnabled(tab, after) && !TabEnabled(tab, before) {
			c.activeTab = tab
			return
		}
	}
	if !TabEnabled(c.activeTab, after) {
		for i := len(TabOrder) - 1; i >= 0; i-- {
			if TabEnabled(TabOrder[i], after) {
				c.activeTab = TabOrder[i]
				return
			}
		}
	}
}

// PreviewFor serves the preview for the requested stage, falling back
// to the latest reachable stage when the requested one is no longer
// reachable (for example after a re-upload reset the session to raw).
// The cache itself never falls back; the key discipline there is what
// makes this safe.
func (c *Controller) PreviewFor(ctx context.Context, requested ProcessingStage) (*PreviewEntry, error) {
	return c.preview(ctx, requested, false)
}

// RefreshPreview bypasses the cache for the resolved stage.
func (c *Controller) RefreshPreview(ctx context.Context, requested ProcessingStage) (*PreviewEntry, error) {
	return c.preview(ctx, requested, true)
}

func (c *Controller) preview(ctx context.Context, requested ProcessingStage, refresh bool) (*PreviewEntry, error) {
	snap := c.session.Snapshot()
	if snap.DatasetID == "" {
		return nil, c.gateViolation(snap)
	}

	stage := requested
	if stage == "" || stage == StageNone {
		stage = LatestReachableStage(snap)
	}
	if !StageReachable(stage, snap) {
		fallback := LatestReachableStage(snap)
		c.logger.DebugContext(ctx, "requested preview stage not reachable, falling back",
			slog.String("requested", string(stage)),
			slog.String("fallback", string(fallback)))
		stage = fallback
	}
	if stage == StageNone {
		return nil, c.gateViolation(snap)
	}

	ctx, span := c.tracer.TracePreviewRequest(ctx, snap.DatasetID, stage, refresh)
	defer span.End()

	var entry *PreviewEntry
	var err error
	if refresh {
		entry, err = c.cache.Refresh(ctx, snap.DatasetID, stage)
	} else {
		entry, err = c.cache.GetPreview(ctx, snap.DatasetID, stage)
	}
	if err != nil {
		if c.hub != nil {
			c.hub.BroadcastError("PREVIEW_FETCH_FAILED", "preview fetch failed",
				err.Error(), string(stage), true)
		}
		return nil, err
	}
	return entry, nil
}

// gateViolation builds the defensive error for preview requests that
// bypassed the gate and notifies subscribers.
func (c *Controller) gateViolation(snap Snapshot) error {
	reason := DisabledReason(TabExplore, snap)
	if c.hub != nil {
		c.hub.BroadcastError("GATE_VIOLATION", "preview requested before the explore tab unlocked",
			reason, string(TabExplore), false)
	}
	return &GateViolationError{Tab: TabExplore, Reason: reason}
}
