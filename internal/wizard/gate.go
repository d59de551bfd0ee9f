package wizard

// Stage gate: pure reachability predicates over a session Snapshot.
// No side effects, no I/O. A zero-value Snapshot (fresh session) must
// evaluate without panicking: every predicate treats an absent field as
// not-yet-satisfied.

// TabEnabled reports whether the given wizard tab is currently
// reachable for the session.
func TabEnabled(tab Tab, s Snapshot) bool {
	switch tab {
	case TabUpload:
		return true
	case TabExplore:
		return s.DatasetID != ""
	case TabFeatures:
		return featuresEnabled(s)
	case TabPreprocess:
		// Requiring the features tab keeps the dependency chain
		// monotonic even for hand-built snapshots.
		return featuresEnabled(s) && s.TargetColumn != "" && len(s.ColumnsToKeep) > 0
	}
	return false
}

// featuresEnabled: a dataset must exist, and either cleaning has been
// confirmed or the overview shows nothing to clean. A dataset with zero
// missing values skips the explicit cleaning step, mirroring automatic
// server-side cleaning. Task type never gates; it is derived from the
// target column and arrives asynchronously.
func featuresEnabled(s Snapshot) bool {
	if s.DatasetID == "" {
		return false
	}
	if s.Stage.AtLeast(StageCleaned) {
		return true
	}
	return s.Overview != nil && s.Overview.TotalMissingValues == 0
}

// DisabledReason explains why a tab is not reachable. The text names
// the first unmet precondition in the dependency chain
// upload -> explore -> features -> preprocess, so the user is told the
// actual next actionable step rather than a restatement of the rule.
// Returns the empty string when the tab is enabled.
func DisabledReason(tab Tab, s Snapshot) string {
	if TabEnabled(tab, s) {
		return ""
	}

	if s.DatasetID == "" {
		return "Upload a dataset to get started."
	}

	// explore is reachable whenever a dataset exists, so any remaining
	// block is at the features step or later.
	if !featuresEnabled(s) {
		return "Handle the missing values in your dataset before moving on."
	}

	// tab must be preprocess at this point.
	if s.TargetColumn == "" {
		return "Choose a target column on the features tab first."
	}
	if len(s.ColumnsToKeep) == 0 {
		return "Select at least one feature column to keep before preprocessing."
	}
	return "Complete the previous steps first."
}

// StageReachable reports whether a preview for the given stage can be
// served for the session without returning mismatched data.
func StageReachable(stage ProcessingStage, s Snapshot) bool {
	switch stage {
	case StageRaw:
		return s.DatasetID != ""
	case StageCleaned:
		return featuresEnabled(s)
	case StageFinal:
		return s.Stage.AtLeast(StageFinal)
	case StageProcessed:
		return s.Stage.AtLeast(StageProcessed)
	}
	return false
}

// LatestReachableStage returns the most advanced stage whose preview is
// currently reachable, or StageNone when no dataset exists. Used as the
// fallback target when the requested stage is no longer reachable, for
// example after a re-upload reset the session to raw.
func LatestReachableStage(s Snapshot) ProcessingStage {
	for _, stage := range previewStages {
		if StageReachable(stage, s) {
			return stage
		}
	}
	return StageNone
}
