package classifier

import (
	"fmt"
	"math"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/pkg/utils"
)

// FormatDenseV1 is the only network format FeedForward understands.
const FormatDenseV1 = "dense-v1"

// Activation is the element-wise function applied after a dense layer.
type Activation string

const (
	ActivationLinear  Activation = "linear"
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
	ActivationTanh    Activation = "tanh"
)

func (a Activation) apply(x float64) float64 {
	switch a {
	case ActivationReLU:
		if x < 0 {
			return 0
		}
		return x
	case ActivationSigmoid:
		return utils.Sigmoid(x)
	case ActivationTanh:
		return math.Tanh(x)
	default:
		return x
	}
}

func (a Activation) valid() bool {
	switch a {
	case ActivationLinear, ActivationReLU, ActivationSigmoid, ActivationTanh:
		return true
	}
	return false
}

// Layer is one dense layer as persisted: Weights is indexed [input][unit]
// (the Keras kernel layout) and Bias has one entry per unit.
type Layer struct {
	Activation Activation  `json:"activation" yaml:"activation"`
	Weights    [][]float64 `json:"weights" yaml:"weights"`
	Bias       []float64   `json:"bias" yaml:"bias"`
}

// Network is the persisted form of a feed-forward classifier.
type Network struct {
	Format       string   `json:"format" yaml:"format"`
	InputWidth   int      `json:"input_width" yaml:"input_width"`
	FeatureNames []string `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Layers       []Layer  `json:"layers" yaml:"layers"`
}

type dense struct {
	in, out int
	w       []float64 // row-major, in*out
	b       []float64
	act     Activation
}

// FeedForward evaluates a stack of dense layers. It holds no mutable state
// and is safe for concurrent use.
type FeedForward struct {
	inputWidth int
	names      []string
	layers     []dense
}

// NewFeedForward checks the layer shapes of n and builds the network.
// The last layer must have exactly one unit.
func NewFeedForward(n Network) (*FeedForward, error) {
	if n.Format != "" && n.Format != FormatDenseV1 {
		return nil, fmt.Errorf("unsupported network format %q", n.Format)
	}
	if n.InputWidth <= 0 {
		return nil, fmt.Errorf("%w: input width %d", models.ErrShapeMismatch, n.InputWidth)
	}
	if len(n.Layers) == 0 {
		return nil, fmt.Errorf("%w: network has no layers", models.ErrShapeMismatch)
	}
	if len(n.FeatureNames) > 0 && len(n.FeatureNames) != n.InputWidth {
		return nil, fmt.Errorf("%w: %d feature names for input width %d",
			models.ErrShapeMismatch, len(n.FeatureNames), n.InputWidth)
	}

	ff := &FeedForward{
		inputWidth: n.InputWidth,
		names:      append([]string(nil), n.FeatureNames...),
	}
	width := n.InputWidth
	for li, l := range n.Layers {
		act := l.Activation
		if act == "" {
			act = ActivationLinear
		}
		if !act.valid() {
			return nil, fmt.Errorf("layer %d: unknown activation %q", li, l.Activation)
		}
		if len(l.Weights) != width {
			return nil, fmt.Errorf("%w: layer %d has %d weight rows, expected %d",
				models.ErrShapeMismatch, li, len(l.Weights), width)
		}
		out := len(l.Bias)
		if out == 0 {
			return nil, fmt.Errorf("%w: layer %d has no units", models.ErrShapeMismatch, li)
		}
		d := dense{in: width, out: out, w: make([]float64, 0, width*out), act: act}
		for ri, row := range l.Weights {
			if len(row) != out {
				return nil, fmt.Errorf("%w: layer %d row %d has %d weights, expected %d",
					models.ErrShapeMismatch, li, ri, len(row), out)
			}
			for ci, v := range row {
				if !utils.IsFinite(v) {
					return nil, fmt.Errorf("layer %d: weight [%d][%d] is not finite", li, ri, ci)
				}
			}
			d.w = append(d.w, row...)
		}
		for bi, v := range l.Bias {
			if !utils.IsFinite(v) {
				return nil, fmt.Errorf("layer %d: bias %d is not finite", li, bi)
			}
		}
		d.b = append([]float64(nil), l.Bias...)
		ff.layers = append(ff.layers, d)
		width = out
	}
	if width != 1 {
		return nil, fmt.Errorf("%w: network has %d outputs, expected 1", models.ErrShapeMismatch, width)
	}
	return ff, nil
}

// Predict runs the forward pass.
func (f *FeedForward) Predict(x []float64) (float64, error) {
	if len(x) != f.inputWidth {
		return 0, fmt.Errorf("%w: got %d inputs, network expects %d", models.ErrShapeMismatch, len(x), f.inputWidth)
	}
	cur := x
	for _, l := range f.layers {
		next := make([]float64, l.out)
		copy(next, l.b)
		for i, v := range cur {
			row := l.w[i*l.out : (i+1)*l.out]
			for j, w := range row {
				next[j] += v * w
			}
		}
		for j := range next {
			next[j] = l.act.apply(next[j])
		}
		cur = next
	}
	return cur[0], nil
}

// InputWidth returns the number of inputs.
func (f *FeedForward) InputWidth() int { return f.inputWidth }

// FeatureNames returns the feature order recorded in the artifact, if any.
func (f *FeedForward) FeatureNames() []string { return append([]string(nil), f.names...) }

// Backend returns "native".
func (f *FeedForward) Backend() string { return "native" }

// Close is a no-op.
func (f *FeedForward) Close() error { return nil }
