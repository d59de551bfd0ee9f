package domain

import (
	"time"
)

// DatasetOverview summarizes a dataset as currently staged on the platform.
// It is returned by the upload and missing-value collaborators and drives
// the wizard's zero-missing-values shortcut.
type DatasetOverview struct {
	NumRows             int      `json:"num_rows"`
	NumColumns          int      `json:"num_columns"`
	TotalMissingValues  int      `json:"total_missing_values"`
	NumericalFeatures   []string `json:"numerical_features,omitempty"`
	CategoricalFeatures []string `json:"categorical_features,omitempty"`
}

// HasMissingValues reports whether the staged dataset still contains
// missing cells.
func (o *DatasetOverview) HasMissingValues() bool {
	return o != nil && o.TotalMissingValues > 0
}

// PreviewRow is a single preview record, column name to raw cell value.
type PreviewRow map[string]interface{}

// PreviewPage is the preview collaborator's response for one
// (dataset, stage) pair.
type PreviewPage struct {
	Rows                []PreviewRow `json:"rows"`
	Columns             []string     `json:"columns"`
	NumRows             int          `json:"num_rows"`
	NumColumns          int          `json:"num_columns"`
	NumericalFeatures   []string     `json:"numerical_features,omitempty"`
	CategoricalFeatures []string     `json:"categorical_features,omitempty"`
}

// UploadResult is returned by the upload collaborator once a dataset has
// been stored server-side.
type UploadResult struct {
	DatasetID string           `json:"dataset_id"`
	Overview  *DatasetOverview `json:"overview,omitempty"`
}

// CleanResult is returned by the missing-value collaborator after the
// requested strategy has been applied.
type CleanResult struct {
	DatasetID string           `json:"dataset_id"`
	Strategy  string           `json:"strategy"`
	Overview  *DatasetOverview `json:"overview,omitempty"`
}

// FeatureSelection is the confirmed target/feature choice for a dataset.
type FeatureSelection struct {
	DatasetID     string   `json:"dataset_id"`
	TargetColumn  string   `json:"target_column"`
	ColumnsToKeep []string `json:"columns_to_keep"`
	TaskType      string   `json:"task_type,omitempty"`
}

// PreprocessResult is returned by the preprocessing collaborator.
type PreprocessResult struct {
	DatasetID     string `json:"dataset_id"`
	Normalization string `json:"normalization"`
	Balancing     string `json:"balancing"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// MissingValueStrategy identifies how the platform fills or drops
// missing cells.
type MissingValueStrategy string

const (
	StrategyDropRows   MissingValueStrategy = "drop_rows"
	StrategyMeanImpute MissingValueStrategy = "mean_impute"
	StrategyModeImpute MissingValueStrategy = "mode_impute"
)

// Valid reports whether the strategy is one the platform understands.
func (s MissingValueStrategy) Valid() bool {
	switch s {
	case StrategyDropRows, StrategyMeanImpute, StrategyModeImpute:
		return true
	}
	return false
}
