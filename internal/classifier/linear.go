package classifier

import (
	"fmt"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/pkg/utils"
)

// Linear is a logistic stand-in: sigmoid(w.x + b). It is used as a test
// fixture and for smoke deployments without a trained network.
type Linear struct {
	weights []float64
	bias    float64
}

// NewLinear returns a linear classifier with one weight per input.
func NewLinear(weights []float64, bias float64) *Linear {
	return &Linear{weights: append([]float64(nil), weights...), bias: bias}
}

// Predict returns sigmoid(w.x + b).
func (l *Linear) Predict(x []float64) (float64, error) {
	if len(x) != len(l.weights) {
		return 0, fmt.Errorf("%w: got %d inputs, expected %d", models.ErrShapeMismatch, len(x), len(l.weights))
	}
	return utils.Sigmoid(utils.Dot(l.weights, x) + l.bias), nil
}

// InputWidth returns the number of weights.
func (l *Linear) InputWidth() int { return len(l.weights) }

// Backend returns "linear".
func (l *Linear) Backend() string { return "linear" }

// Close is a no-op.
func (l *Linear) Close() error { return nil }
