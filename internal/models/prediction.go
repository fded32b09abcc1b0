package models

import "time"

// Label is the binary diagnosis derived from a probability.
type Label string

const (
	LabelMalignant Label = "Malignant"
	LabelBenign    Label = "Benign"
)

// DecisionThreshold separates the two labels. The comparison is strict:
// a probability of exactly 0.5 is Benign.
const DecisionThreshold = 0.5

// LabelFor maps a malignancy probability to a label.
func LabelFor(p float64) Label {
	if p > DecisionThreshold {
		return LabelMalignant
	}
	return LabelBenign
}

// PredictionResult is the outcome of one inference.
type PredictionResult struct {
	Probability float64 `json:"probability"`
	Label       Label   `json:"label"`
}

// Source identifies where a prediction request came from.
type Source string

const (
	SourceAPI   Source = "api"
	SourceCLI   Source = "cli"
	SourceBatch Source = "batch"
)

// PredictionRecord is a persisted prediction.
type PredictionRecord struct {
	ID           string        `json:"id" db:"id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	Source       Source        `json:"source" db:"source"`
	Features     FeatureVector `json:"features" db:"features"`
	Probability  float64       `json:"probability" db:"probability"`
	Label        Label         `json:"label" db:"label"`
	ModelVersion string        `json:"model_version" db:"model_version"`
}

// PredictRequest is the body of a predict call. Features may also be sent as
// the top-level object; see the server package.
type PredictRequest struct {
	Features FeatureVector `json:"features"`
}

// PredictResponse is returned by the predict endpoint.
type PredictResponse struct {
	ID           string  `json:"id,omitempty"`
	Probability  float64 `json:"probability"`
	Label        Label   `json:"label"`
	ModelVersion string  `json:"model_version,omitempty"`
}
