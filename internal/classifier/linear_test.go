package classifier

import (
	"path/filepath"
	"testing"

	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear(t *testing.T) {
	l := NewLinear([]float64{1, -1}, 0)
	p, err := l.Predict([]float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p)

	p, err = l.Predict([]float64{3, 1})
	require.NoError(t, err)
	assert.Greater(t, p, 0.5)

	_, err = l.Predict([]float64{1})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	assert.Equal(t, 2, l.InputWidth())
}

func TestNewONNXClassifier_MissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.onnx")
	_, err := NewONNXClassifier(path, 30, ONNXOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrShapeMismatch)
}

func TestONNXOptionsDefaults(t *testing.T) {
	o := ONNXOptions{}.withDefaults()
	assert.Equal(t, "input", o.InputName)
	assert.Equal(t, "output", o.OutputName)

	o = ONNXOptions{InputName: "dense_input", OutputName: "dense_2"}.withDefaults()
	assert.Equal(t, "dense_input", o.InputName)
	assert.Equal(t, "dense_2", o.OutputName)
}
