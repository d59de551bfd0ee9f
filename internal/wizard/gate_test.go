package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"automlcli/internal/wizard"
	"automlcli/pkg/contracts/domain"
)

func TestTabEnabledFreshSession(t *testing.T) {
	var s wizard.Snapshot

	assert.True(t, wizard.TabEnabled(wizard.TabUpload, s))
	assert.False(t, wizard.TabEnabled(wizard.TabExplore, s))
	assert.False(t, wizard.TabEnabled(wizard.TabFeatures, s))
	assert.False(t, wizard.TabEnabled(wizard.TabPreprocess, s))
}

func TestTabEnabled(t *testing.T) {
	tests := []struct {
		name    string
		snap    wizard.Snapshot
		tab     wizard.Tab
		enabled bool
	}{
		{
			name:    "explore needs a dataset",
			snap:    wizard.Snapshot{Stage: wizard.StageNone},
			tab:     wizard.TabExplore,
			enabled: false,
		},
		{
			name:    "explore enabled once uploaded",
			snap:    wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw},
			tab:     wizard.TabExplore,
			enabled: true,
		},
		{
			name:    "features blocked while missing values remain",
			snap:    wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw, Overview: &domain.DatasetOverview{TotalMissingValues: 7}},
			tab:     wizard.TabFeatures,
			enabled: false,
		},
		{
			name:    "features enabled after confirmed cleaning",
			snap:    wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageCleaned},
			tab:     wizard.TabFeatures,
			enabled: true,
		},
		{
			name:    "features enabled at later stages too",
			snap:    wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageProcessed},
			tab:     wizard.TabFeatures,
			enabled: true,
		},
		{
			name:    "features blocked without overview before cleaning",
			snap:    wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw},
			tab:     wizard.TabFeatures,
			enabled: false,
		},
		{
			name: "preprocess needs target and features",
			snap: wizard.Snapshot{
				DatasetID: "d1",
				Stage:     wizard.StageCleaned,
			},
			tab:     wizard.TabPreprocess,
			enabled: false,
		},
		{
			name: "preprocess enabled with full selection",
			snap: wizard.Snapshot{
				DatasetID:     "d1",
				Stage:         wizard.StageCleaned,
				TargetColumn:  "y",
				ColumnsToKeep: []string{"a", "b"},
			},
			tab:     wizard.TabPreprocess,
			enabled: true,
		},
		{
			name: "empty columns to keep fails the non-empty check",
			snap: wizard.Snapshot{
				DatasetID:     "d1",
				Stage:         wizard.StageCleaned,
				TargetColumn:  "y",
				ColumnsToKeep: []string{},
			},
			tab:     wizard.TabPreprocess,
			enabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enabled, wizard.TabEnabled(tt.tab, tt.snap))
		})
	}
}

// A dataset with zero missing values may skip the explicit cleaning
// step even while the confirmed stage is still raw.
func TestZeroMissingValuesSkipsCleaning(t *testing.T) {
	s := wizard.Snapshot{
		DatasetID: "d1",
		Stage:     wizard.StageRaw,
		Overview:  &domain.DatasetOverview{TotalMissingValues: 0},
	}

	assert.True(t, wizard.TabEnabled(wizard.TabFeatures, s))
	assert.Equal(t, wizard.StageRaw, s.Stage)
}

// preprocess implies features implies explore, for arbitrary snapshots
// including inconsistent hand-built ones.
func TestDependencyChainMonotonic(t *testing.T) {
	overviews := []*domain.DatasetOverview{
		nil,
		{TotalMissingValues: 0},
		{TotalMissingValues: 3},
	}
	stages := []wizard.ProcessingStage{
		wizard.StageNone, wizard.StageRaw, wizard.StageCleaned, wizard.StageFinal, wizard.StageProcessed,
	}
	ids := []string{"", "d1"}
	targets := []string{"", "y"}
	columns := [][]string{nil, {}, {"a"}}

	for _, id := range ids {
		for _, stage := range stages {
			for _, ov := range overviews {
				for _, target := range targets {
					for _, cols := range columns {
						s := wizard.Snapshot{
							DatasetID:     id,
							Stage:         stage,
							Overview:      ov,
							TargetColumn:  target,
							ColumnsToKeep: cols,
						}
						if wizard.TabEnabled(wizard.TabPreprocess, s) {
							assert.True(t, wizard.TabEnabled(wizard.TabFeatures, s), "preprocess enabled without features: %+v", s)
						}
						if wizard.TabEnabled(wizard.TabFeatures, s) {
							assert.True(t, wizard.TabEnabled(wizard.TabExplore, s), "features enabled without explore: %+v", s)
						}
					}
				}
			}
		}
	}
}

func TestDisabledReason(t *testing.T) {
	tests := []struct {
		name     string
		snap     wizard.Snapshot
		tab      wizard.Tab
		contains string
	}{
		{
			name:     "fresh session points at upload for explore",
			snap:     wizard.Snapshot{Stage: wizard.StageNone},
			tab:      wizard.TabExplore,
			contains: "Upload a dataset",
		},
		{
			name:     "fresh session points at upload even for preprocess",
			snap:     wizard.Snapshot{Stage: wizard.StageNone},
			tab:      wizard.TabPreprocess,
			contains: "Upload a dataset",
		},
		{
			name: "missing values block features",
			snap: wizard.Snapshot{
				DatasetID: "d1",
				Stage:     wizard.StageRaw,
				Overview:  &domain.DatasetOverview{TotalMissingValues: 12},
			},
			tab:      wizard.TabFeatures,
			contains: "missing values",
		},
		{
			name: "missing values block preprocess before feature selection matters",
			snap: wizard.Snapshot{
				DatasetID: "d1",
				Stage:     wizard.StageRaw,
				Overview:  &domain.DatasetOverview{TotalMissingValues: 12},
			},
			tab:      wizard.TabPreprocess,
			contains: "missing values",
		},
		{
			name: "no target column yet",
			snap: wizard.Snapshot{
				DatasetID: "d1",
				Stage:     wizard.StageCleaned,
			},
			tab:      wizard.TabPreprocess,
			contains: "target column",
		},
		{
			name: "empty feature selection names feature selection, not the target",
			snap: wizard.Snapshot{
				DatasetID:     "d1",
				Stage:         wizard.StageCleaned,
				TargetColumn:  "y",
				ColumnsToKeep: []string{},
			},
			tab:      wizard.TabPreprocess,
			contains: "feature column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason := wizard.DisabledReason(tt.tab, tt.snap)
			require.NotEmpty(t, reason)
			assert.Contains(t, reason, tt.contains)
		})
	}
}

func TestDisabledReasonEmptyWhenEnabled(t *testing.T) {
	s := wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw}
	assert.Empty(t, wizard.DisabledReason(wizard.TabUpload, s))
	assert.Empty(t, wizard.DisabledReason(wizard.TabExplore, s))
}

func TestLatestReachableStage(t *testing.T) {
	tests := []struct {
		name string
		snap wizard.Snapshot
		want wizard.ProcessingStage
	}{
		{
			name: "no dataset means no stage",
			snap: wizard.Snapshot{},
			want: wizard.StageNone,
		},
		{
			name: "raw dataset with missing values",
			snap: wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw, Overview: &domain.DatasetOverview{TotalMissingValues: 5}},
			want: wizard.StageRaw,
		},
		{
			name: "zero missing values reaches cleaned without confirmation",
			snap: wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageRaw, Overview: &domain.DatasetOverview{TotalMissingValues: 0}},
			want: wizard.StageCleaned,
		},
		{
			name: "cleaned dataset",
			snap: wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageCleaned},
			want: wizard.StageCleaned,
		},
		{
			name: "fully processed dataset",
			snap: wizard.Snapshot{DatasetID: "d1", Stage: wizard.StageProcessed},
			want: wizard.StageProcessed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wizard.LatestReachableStage(tt.snap))
		})
	}
}
