package wizard

// ProcessingStage is the furthest preparation stage the platform has
// confirmed for the current dataset.
type ProcessingStage string

const (
	StageNone      ProcessingStage = "none"
	StageRaw       ProcessingStage = "raw"
	StageCleaned   ProcessingStage = "cleaned"
	StageFinal     ProcessingStage = "final"
	StageProcessed ProcessingStage = "processed"
)

// stageRank gives the monotonic order of stages. Transitions may only
// move forward along this order, except for the reset performed by a
// brand-new upload.
var stageRank = map[ProcessingStage]int{
	StageNone:      0,
	StageRaw:       1,
	StageCleaned:   2,
	StageFinal:     3,
	StageProcessed: 4,
}

// Rank returns the position of the stage in the preparation order.
// Unknown stages rank below StageNone.
func (s ProcessingStage) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}
	return -1
}

// Valid reports whether the stage is one of the known values.
func (s ProcessingStage) Valid() bool {
	_, ok := stageRank[s]
	return ok
}

// AtLeast reports whether the stage has reached other in the
// preparation order.
func (s ProcessingStage) AtLeast(other ProcessingStage) bool {
	return s.Rank() >= other.Rank()
}

// previewStages lists the stages that have a previewable table on the
// platform, newest first. Used for the latest-reachable-stage fallback.
var previewStages = []ProcessingStage{StageProcessed, StageFinal, StageCleaned, StageRaw}

// Tab identifies one of the wizard tabs shown to the user.
type Tab string

const (
	TabUpload     Tab = "upload"
	TabExplore    Tab = "explore"
	TabFeatures   Tab = "features"
	TabPreprocess Tab = "preprocess"
)

// TabOrder is the fixed left-to-right order of the wizard tabs. Tab
// advancement and disabled-reason reporting both walk this order.
var TabOrder = []Tab{TabUpload, TabExplore, TabFeatures, TabPreprocess}

// ValidTab reports whether t names a wizard tab.
func ValidTab(t Tab) bool {
	for _, tab := range TabOrder {
		if tab == t {
			return true
		}
	}
	return false
}
