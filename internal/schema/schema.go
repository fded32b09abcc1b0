// Package schema defines the canonical 30-feature tumor measurement schema.
//
// The schema has three bands (mean, standard error, worst) of the same ten
// morphological measurements. Feature names match the names the scaler was
// fitted with, including the space in "concave points".
package schema

import (
	"fmt"
	"math"

	"github.com/hyperjump/tumorcheck/internal/models"
)

// Size is the number of features in the schema.
const Size = 30

// Measurements are the ten underlying morphological measurements, in order.
var Measurements = []string{
	"radius",
	"texture",
	"perimeter",
	"area",
	"smoothness",
	"compactness",
	"concavity",
	"concave points",
	"symmetry",
	"fractal_dimension",
}

// Band groups the ten measurements under one statistic.
type Band struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Bands are the three statistics, in schema order.
var Bands = []Band{
	{Key: "mean", Title: "Mean Features"},
	{Key: "se", Title: "Standard Error (SE) Features"},
	{Key: "worst", Title: "Worst Features"},
}

// defaults are the starting values offered to a user, band by band.
var defaults = [Size]float64{
	14.0, 20.0, 90.0, 600.0, 0.1, 0.15, 0.2, 0.1, 0.2, 0.06,
	0.2, 1.0, 1.5, 20.0, 0.005, 0.02, 0.03, 0.01, 0.03, 0.004,
	16.0, 25.0, 105.0, 800.0, 0.12, 0.2, 0.3, 0.15, 0.25, 0.08,
}

var names = buildNames()

func buildNames() []string {
	out := make([]string, 0, Size)
	for _, b := range Bands {
		for _, m := range Measurements {
			out = append(out, m+"_"+b.Key)
		}
	}
	return out
}

// Names returns the canonical feature names in order. The slice is a copy.
func Names() []string {
	return append([]string(nil), names...)
}

// Index returns the position of name in the schema, or -1.
func Index(name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Defaults returns a vector of default values in canonical order.
func Defaults() models.FeatureVector {
	return models.FromValues(names, defaults[:])
}

// Default returns the default value for name.
func Default(name string) (float64, bool) {
	i := Index(name)
	if i < 0 {
		return 0, false
	}
	return defaults[i], true
}

// Range is the input range offered for one feature.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// RangeStep is the input granularity for every feature.
const RangeStep = 0.01

// RangeFor returns the input range for name: half to one and a half times the default.
func RangeFor(name string) (Range, bool) {
	d, ok := Default(name)
	if !ok {
		return Range{}, false
	}
	return Range{Min: d * 0.5, Max: d * 1.5, Step: RangeStep, Default: d}, true
}

// Group is one band of the schema with its features.
type Group struct {
	Band     Band          `json:"band"`
	Features []FeatureInfo `json:"features"`
}

// FeatureInfo describes one feature for clients that render an input form.
type FeatureInfo struct {
	Name        string `json:"name"`
	Measurement string `json:"measurement"`
	Range
}

// Groups returns the schema grouped by band.
func Groups() []Group {
	groups := make([]Group, 0, len(Bands))
	for _, b := range Bands {
		g := Group{Band: b}
		for _, m := range Measurements {
			name := m + "_" + b.Key
			r, _ := RangeFor(name)
			g.Features = append(g.Features, FeatureInfo{Name: name, Measurement: m, Range: r})
		}
		groups = append(groups, g)
	}
	return groups
}

// Validate checks that v has exactly the canonical names in canonical order
// and that every value is finite. Nothing is reordered or filled in.
func Validate(v models.FeatureVector) error {
	if e := models.CompareSchema(names, v.Names()); e != nil {
		return e
	}
	return v.CheckFinite()
}

// Parse builds a vector from default values and name=value overrides.
func Parse(overrides map[string]float64) (models.FeatureVector, error) {
	v := Defaults()
	for name, value := range overrides {
		i := Index(name)
		if i < 0 {
			return nil, &models.SchemaError{Unexpected: []string{name}, Position: -1}
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s is not a finite number", models.ErrInvalidValue, name)
		}
		v[i].Value = value
	}
	return v, nil
}
