// Package models defines core data structures for feature vectors, predictions, and their errors.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Feature is a single named measurement.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FeatureVector is an ordered list of named measurements. Order is significant:
// it must match the order the scaler was fitted with.
type FeatureVector []Feature

// FromValues zips names and values into a vector. It panics if the lengths differ.
func FromValues(names []string, values []float64) FeatureVector {
	if len(names) != len(values) {
		panic(fmt.Sprintf("models: %d names for %d values", len(names), len(values)))
	}
	v := make(FeatureVector, len(names))
	for i, name := range names {
		v[i] = Feature{Name: name, Value: values[i]}
	}
	return v
}

// Names returns the feature names in order.
func (v FeatureVector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Values returns the feature values in order.
func (v FeatureVector) Values() []float64 {
	values := make([]float64, len(v))
	for i, f := range v {
		values[i] = f.Value
	}
	return values
}

// Get returns the value of the first feature with the given name.
func (v FeatureVector) Get(name string) (float64, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Set replaces the value of name, or appends it when absent.
func (v FeatureVector) Set(name string, value float64) FeatureVector {
	for i := range v {
		if v[i].Name == name {
			v[i].Value = value
			return v
		}
	}
	return append(v, Feature{Name: name, Value: value})
}

// Clone returns a copy that shares no memory with v.
func (v FeatureVector) Clone() FeatureVector {
	return append(FeatureVector(nil), v...)
}

// CheckFinite returns ErrInvalidValue for the first NaN or infinite value.
func (v FeatureVector) CheckFinite() error {
	for _, f := range v {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidValue, f.Name)
		}
	}
	return nil
}

// MarshalJSON encodes the vector as a JSON object, keeping feature order.
func (v FeatureVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the vector, keeping key order and
// duplicate keys so that schema validation can see exactly what was sent.
func (v *FeatureVector) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("feature vector must be a JSON object")
	}
	out := FeatureVector{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
		num, ok := tok.(json.Number)
		if !ok {
			return fmt.Errorf("%w: %s: %v is not a number", ErrInvalidValue, name, tok)
		}
		value, err := num.Float64()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, name, err)
		}
		out = append(out, Feature{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*v = out
	return nil
}
