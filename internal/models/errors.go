package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaMismatch means the feature names or their order differ from the fitted schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrInvalidValue means a feature value is missing, unparseable, NaN or infinite.
	ErrInvalidValue = errors.New("invalid feature value")
	// ErrDegenerateScale means a fitted scale is zero, so the feature cannot be normalized.
	ErrDegenerateScale = errors.New("degenerate scale")
	// ErrShapeMismatch means a vector or layer does not fit the network's shape.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidOutput means the classifier produced something that is not a probability.
	ErrInvalidOutput = errors.New("invalid classifier output")
)

// IsArtifactError reports whether err comes from corrupted or incompatible
// artifacts. Such errors repeat for every request, so they make the process
// unready rather than failing a single request.
func IsArtifactError(err error) bool {
	return errors.Is(err, ErrDegenerateScale) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrInvalidOutput)
}

// IsRequestError reports whether err is caused by the caller's input.
func IsRequestError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrInvalidValue)
}

// SchemaError describes how a list of feature names differs from the expected one.
type SchemaError struct {
	Missing    []string `json:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`
	Duplicates []string `json:"duplicates,omitempty"`
	// Position is the first index whose name is out of order, or -1.
	Position int    `json:"position"`
	Expected string `json:"expected,omitempty"`
	Got      string `json:"got,omitempty"`
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", e.Missing))
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected %v", e.Unexpected))
	}
	if len(e.Duplicates) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate %v", e.Duplicates))
	}
	if e.Position >= 0 {
		parts = append(parts, fmt.Sprintf("position %d: expected %q, got %q", e.Position, e.Expected, e.Got))
	}
	return ErrSchemaMismatch.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrSchemaMismatch) true.
func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// CompareSchema returns nil when got equals expected element by element,
// otherwise a SchemaError listing every difference it found.
func CompareSchema(expected, got []string) *SchemaError {
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
	}
	seen := make(map[string]int, len(got))
	for _, name := range got {
		seen[name]++
	}

	e := &SchemaError{Position: -1}
	for _, name := range expected {
		if seen[name] == 0 {
			e.Missing = append(e.Missing, name)
		}
	}
	reported := make(map[string]bool)
	for _, name := range got {
		if reported[name] {
			continue
		}
		if !want[name] {
			e.Unexpected = append(e.Unexpected, name)
			reported[name] = true
		} else if seen[name] > 1 {
			e.Duplicates = append(e.Duplicates, name)
			reported[name] = true
		}
	}
	if len(e.Missing) > 0 || len(e.Unexpected) > 0 || len(e.Duplicates) > 0 {
		return e
	}
	for i := range expected {
		if got[i] != expected[i] {
			e.Position = i
			e.Expected = expected[i]
			e.Got = got[i]
			return e
		}
	}
	return nil
}
