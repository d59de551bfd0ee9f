package wizard

import (
	"automlcli/pkg/contracts/domain"
)

// EventType identifies a confirmed platform response that may advance
// the session stage.
type EventType string

const (
	// EventUploadCompleted fires when the upload collaborator has stored
	// a new dataset. Legal from any stage; resets the session to raw.
	EventUploadCompleted EventType = "upload_completed"

	// EventMissingValuesHandled fires when the missing-value
	// collaborator has confirmed cleaning. Legal only from raw.
	EventMissingValuesHandled EventType = "missing_values_handled"

	// EventFeaturesSaved fires when the feature-save collaborator has
	// confirmed the target/feature selection. Legal only from cleaned.
	EventFeaturesSaved EventType = "features_saved"

	// EventPreprocessCompleted fires when the preprocessing collaborator
	// has confirmed normalization and balancing. Legal only from final.
	EventPreprocessCompleted EventType = "preprocess_completed"
)

// Event carries the confirmed payload of a platform response into the
// transition controller. Only fields relevant to the event type are set.
type Event struct {
	Type      EventType
	DatasetID string

	// Overview accompanies upload and missing-value responses.
	Overview *domain.DatasetOverview

	// TargetColumn and ColumnsToKeep accompany feature-save responses.
	TargetColumn  string
	ColumnsToKeep []string
}
