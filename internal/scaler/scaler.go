// Package scaler applies a persisted standardization transform to feature vectors.
package scaler

import (
	"fmt"
	"math"

	"github.com/hyperjump/tumorcheck/internal/models"
)

// Params are the fitted per-feature statistics, in fitted order.
type Params struct {
	FeatureNames []string  `json:"feature_names" yaml:"feature_names"`
	Mean         []float64 `json:"mean" yaml:"mean"`
	Scale        []float64 `json:"scale" yaml:"scale"`
}

// Scaler standardizes vectors as (x - mean) / scale. It is immutable after
// New returns and safe for concurrent use.
type Scaler struct {
	names []string
	mean  []float64
	scale []float64
}

// New validates p and returns a Scaler. A zero or non-finite scale fails with
// ErrDegenerateScale; inconsistent lengths fail with ErrShapeMismatch.
func New(p Params) (*Scaler, error) {
	n := len(p.FeatureNames)
	if n == 0 {
		return nil, fmt.Errorf("%w: scaler has no features", models.ErrShapeMismatch)
	}
	if len(p.Mean) != n || len(p.Scale) != n {
		return nil, fmt.Errorf("%w: scaler has %d names, %d means, %d scales",
			models.ErrShapeMismatch, n, len(p.Mean), len(p.Scale))
	}
	if e := models.CompareSchema(dedupe(p.FeatureNames), p.FeatureNames); e != nil {
		return nil, fmt.Errorf("scaler feature names: %w", e)
	}
	for i, name := range p.FeatureNames {
		if math.IsNaN(p.Mean[i]) || math.IsInf(p.Mean[i], 0) {
			return nil, fmt.Errorf("%w: mean of %s is not finite", models.ErrDegenerateScale, name)
		}
		if err := checkScale(name, p.Scale[i]); err != nil {
			return nil, err
		}
	}
	return &Scaler{
		names: append([]string(nil), p.FeatureNames...),
		mean:  append([]float64(nil), p.Mean...),
		scale: append([]float64(nil), p.Scale...),
	}, nil
}

func checkScale(name string, s float64) error {
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: scale of %s is %v", models.ErrDegenerateScale, name, s)
	}
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// FeatureNames returns the fitted feature names in order.
func (s *Scaler) FeatureNames() []string {
	return append([]string(nil), s.names...)
}

// Width returns the number of fitted features.
func (s *Scaler) Width() int {
	return len(s.names)
}

// Params returns a copy of the fitted statistics.
func (s *Scaler) Params() Params {
	return Params{
		FeatureNames: s.FeatureNames(),
		Mean:         append([]float64(nil), s.mean...),
		Scale:        append([]float64(nil), s.scale...),
	}
}

// Scale returns a new vector with every value standardized. The names of v
// must equal the fitted names in fitted order.
func (s *Scaler) Scale(v models.FeatureVector) (models.FeatureVector, error) {
	if e := models.CompareSchema(s.names, v.Names()); e != nil {
		return nil, e
	}
	values, err := s.Transform(v.Values())
	if err != nil {
		return nil, err
	}
	return models.FromValues(s.names, values), nil
}

// Transform standardizes raw values that are already in fitted order.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.names) {
		return nil, fmt.Errorf("%w: got %d values, scaler expects %d", models.ErrShapeMismatch, len(x), len(s.names))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		if err := checkScale(s.names[i], s.scale[i]); err != nil {
			return nil, err
		}
		out[i] = (v - s.mean[i]) / s.scale[i]
	}
	return out, nil
}
