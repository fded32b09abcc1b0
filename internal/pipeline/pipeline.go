// Package pipeline turns a raw feature vector into a diagnosis:
// validate, scale, classify, label.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/hyperjump/tumorcheck/internal/classifier"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/scaler"
	"github.com/hyperjump/tumorcheck/internal/schema"
)

// Inferer produces a prediction for one feature vector.
type Inferer interface {
	Infer(v models.FeatureVector) (*models.PredictionResult, error)
	Info() Info
}

// Info describes the loaded artifacts.
type Info struct {
	Version    string             `json:"model_version"`
	Backend    string             `json:"backend"`
	InputWidth int                `json:"input_width"`
	Cache      *models.CacheStats `json:"cache,omitempty"`
}

// Pipeline holds the scaler and classifier. All fields are set by New and
// never written again, so a Pipeline can be shared by concurrent requests
// without locking.
type Pipeline struct {
	names      []string
	scaler     *scaler.Scaler
	classifier classifier.Classifier
	version    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithVersion records an identifier for the loaded artifacts.
func WithVersion(v string) Option {
	return func(p *Pipeline) { p.version = v }
}

// New checks that the scaler and classifier agree with the canonical schema
// and with each other. Any disagreement is an artifact problem and is
// returned before a single request is served.
func New(s *scaler.Scaler, c classifier.Classifier, opts ...Option) (*Pipeline, error) {
	if s == nil || c == nil {
		return nil, errors.New("pipeline needs a scaler and a classifier")
	}
	names := schema.Names()
	if e := models.CompareSchema(names, s.FeatureNames()); e != nil {
		return nil, fmt.Errorf("scaler does not match the feature schema: %w", e)
	}
	if c.InputWidth() != len(names) {
		return nil, fmt.Errorf("%w: classifier takes %d inputs, schema has %d features",
			models.ErrShapeMismatch, c.InputWidth(), len(names))
	}
	if fn, ok := c.(classifier.FeatureNamer); ok {
		if cn := fn.FeatureNames(); len(cn) > 0 {
			if e := models.CompareSchema(names, cn); e != nil {
				return nil, fmt.Errorf("%w: classifier feature order differs from scaler: %v",
					models.ErrShapeMismatch, e)
			}
		}
	}
	p := &Pipeline{names: names, scaler: s, classifier: c}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Infer validates v, scales it, runs the classifier and labels the result.
// Validation failures return before the scaler or classifier is touched.
func (p *Pipeline) Infer(v models.FeatureVector) (*models.PredictionResult, error) {
	if err := schema.Validate(v); err != nil {
		return nil, err
	}
	scaled, err := p.scaler.Scale(v)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	prob, err := p.classifier.Predict(scaled.Values())
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if !(prob >= 0 && prob <= 1) {
		return nil, fmt.Errorf("%w: %v is not a probability", models.ErrInvalidOutput, prob)
	}
	return &models.PredictionResult{Probability: prob, Label: models.LabelFor(prob)}, nil
}

// Info returns the artifact version and backend.
func (p *Pipeline) Info() Info {
	return Info{
		Version:    p.version,
		Backend:    p.classifier.Backend(),
		InputWidth: p.classifier.InputWidth(),
	}
}

// FeatureNames returns the schema the pipeline validates against.
func (p *Pipeline) FeatureNames() []string {
	return append([]string(nil), p.names...)
}

// Close releases the classifier.
func (p *Pipeline) Close() error {
	return p.classifier.Close()
}
