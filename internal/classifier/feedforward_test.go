package classifier

import (
	"math"
	"sync"
	"testing"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLayer is 3 -> 2 (relu) -> 1 (sigmoid).
func twoLayer() Network {
	return Network{
		Format:     FormatDenseV1,
		InputWidth: 3,
		Layers: []Layer{
			{
				Activation: ActivationReLU,
				Weights:    [][]float64{{1, -1}, {0.5, 0}, {0, 2}},
				Bias:       []float64{0, 0.5},
			},
			{
				Activation: ActivationSigmoid,
				Weights:    [][]float64{{1}, {-1}},
				Bias:       []float64{0.25},
			},
		},
	}
}

func TestFeedForward_Predict(t *testing.T) {
	ff, err := NewFeedForward(twoLayer())
	require.NoError(t, err)

	x := []float64{1, 2, 0.5}
	// hidden: h0 = relu(1 + 1 + 0) = 2; h1 = relu(-1 + 0 + 1 + 0.5) = 0.5
	// out: sigmoid(2 - 0.5 + 0.25)
	want := 1 / (1 + math.Exp(-1.75))
	got, err := ff.Predict(x)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
	assert.Equal(t, 3, ff.InputWidth())
	assert.Equal(t, "native", ff.Backend())
}

func TestFeedForward_ReLUClampsNegative(t *testing.T) {
	ff, err := NewFeedForward(twoLayer())
	require.NoError(t, err)
	// h0 = relu(-1 - 1) = 0; h1 = relu(1 + 0 + 0.5) = 1.5
	got, err := ff.Predict([]float64{-1, -2, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-(-1.5+0.25))), got, 1e-12)
}

func TestFeedForward_ShapeMismatch(t *testing.T) {
	ff, err := NewFeedForward(twoLayer())
	require.NoError(t, err)
	_, err = ff.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestNewFeedForward_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(n *Network)
		shape  bool
	}{
		{"unknown format", func(n *Network) { n.Format = "keras-h5" }, false},
		{"zero input width", func(n *Network) { n.InputWidth = 0 }, true},
		{"no layers", func(n *Network) { n.Layers = nil }, true},
		{"wrong row count", func(n *Network) { n.InputWidth = 4 }, true},
		{"ragged row", func(n *Network) { n.Layers[0].Weights[1] = []float64{1} }, true},
		{"two outputs", func(n *Network) {
			n.Layers[1].Weights = [][]float64{{1, 1}, {1, 1}}
			n.Layers[1].Bias = []float64{0, 0}
		}, true},
		{"feature name count", func(n *Network) { n.FeatureNames = []string{"a"} }, true},
		{"unknown activation", func(n *Network) { n.Layers[0].Activation = "swish" }, false},
		{"nan weight", func(n *Network) { n.Layers[0].Weights[0][0] = math.NaN() }, false},
		{"inf bias", func(n *Network) { n.Layers[1].Bias[0] = math.Inf(1) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := twoLayer()
			tt.mutate(&n)
			_, err := NewFeedForward(n)
			require.Error(t, err)
			assert.Equal(t, tt.shape, models.IsArtifactError(err), "err = %v", err)
		})
	}
}

func TestFeedForward_EmptyActivationIsLinear(t *testing.T) {
	ff, err := NewFeedForward(Network{
		InputWidth: 2,
		Layers:     []Layer{{Weights: [][]float64{{2}, {3}}, Bias: []float64{1}}},
	})
	require.NoError(t, err)
	got, err := ff.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)
}

func TestFeedForward_DoesNotMutateParameters(t *testing.T) {
	n := twoLayer()
	ff, err := NewFeedForward(n)
	require.NoError(t, err)
	first, _ := ff.Predict([]float64{1, 2, 3})
	n.Layers[0].Weights[0][0] = 100
	second, _ := ff.Predict([]float64{1, 2, 3})
	assert.Equal(t, first, second)
}

func TestFeedForward_ConcurrentPredict(t *testing.T) {
	ff, err := NewFeedForward(twoLayer())
	require.NoError(t, err)
	want, _ := ff.Predict([]float64{0.3, 0.2, 0.1})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := ff.Predict([]float64{0.3, 0.2, 0.1})
				if err != nil || got != want {
					t.Errorf("concurrent predict = %v, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
