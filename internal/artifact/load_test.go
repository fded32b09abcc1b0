package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testdataConfig() config.ArtifactsConfig {
	return config.ArtifactsConfig{
		ScalerPath: filepath.Join("testdata", "scaler.json"),
		ModelPath:  filepath.Join("testdata", "model.json"),
	}
}

func TestLoadScaler_JSONAndYAMLAgree(t *testing.T) {
	j, err := LoadScaler(filepath.Join("testdata", "scaler.json"))
	require.NoError(t, err)
	y, err := LoadScaler(filepath.Join("testdata", "scaler.yaml"))
	require.NoError(t, err)

	assert.Equal(t, schema.Names(), j.FeatureNames())
	assert.Equal(t, j.Params(), y.Params())

	p := j.Params()
	assert.Equal(t, 14.0, p.Mean[0])
	assert.Equal(t, 3.5, p.Scale[0])
}

func TestLoadScaler_Degenerate(t *testing.T) {
	_, err := LoadScaler(filepath.Join("testdata", "scaler_degenerate.json"))
	require.ErrorIs(t, err, models.ErrDegenerateScale)
	assert.Contains(t, err.Error(), "area_mean")
}

func TestLoadScaler_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
		return p
	}

	_, err := LoadScaler(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = LoadScaler(write("scaler.pkl", "binary"))
	assert.ErrorContains(t, err, "unsupported artifact format")

	_, err = LoadScaler(write("typo.json", `{"feature_names": ["a"], "mean": [0], "scales": [1]}`))
	assert.ErrorContains(t, err, "scales")

	_, err = LoadScaler(write("short.json", `{"feature_names": ["a", "b"], "mean": [0], "scale": [1]}`))
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestLoadNetwork(t *testing.T) {
	ff, err := LoadNetwork(filepath.Join("testdata", "model.json"))
	require.NoError(t, err)
	assert.Equal(t, schema.Size, ff.InputWidth())
	assert.Equal(t, schema.Names(), ff.FeatureNames())
}

func TestBackendFor(t *testing.T) {
	assert.Equal(t, "native", BackendFor(config.ArtifactsConfig{ModelPath: "m.json"}))
	assert.Equal(t, "onnx", BackendFor(config.ArtifactsConfig{ModelPath: "m.ONNX"}))
	assert.Equal(t, "native", BackendFor(config.ArtifactsConfig{ModelPath: "m.onnx", Backend: "native"}))
}

func TestFingerprint(t *testing.T) {
	cfg := testdataConfig()
	a, err := Fingerprint(cfg.ScalerPath, cfg.ModelPath)
	require.NoError(t, err)
	b, err := Fingerprint(cfg.ScalerPath, cfg.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "sha256:"))
	assert.Len(t, a, len("sha256:")+16)

	c, err := Fingerprint(cfg.ModelPath, cfg.ScalerPath)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = Fingerprint(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestLoader_EndToEnd(t *testing.T) {
	l := NewLoader(testdataConfig(), nil)
	defer l.Close()

	p, err := l.Pipeline()
	require.NoError(t, err)

	res, err := p.Infer(schema.Defaults())
	require.NoError(t, err)
	assert.InDelta(t, 0.4762678458734389, res.Probability, 1e-9)
	assert.Equal(t, models.LabelBenign, res.Label)

	low := schema.Defaults()
	for i := range low {
		low[i].Value *= 0.5
	}
	res, err = p.Infer(low)
	require.NoError(t, err)
	assert.InDelta(t, 0.5411566681502281, res.Probability, 1e-9)
	assert.Equal(t, models.LabelMalignant, res.Label)

	assert.Equal(t, "native", p.Info().Backend)
	assert.NotEmpty(t, p.Info().Version)
}

func TestLoader_LoadsOnce(t *testing.T) {
	l := NewLoader(testdataConfig(), nil)
	defer l.Close()

	var wg sync.WaitGroup
	results := make([]interface{}, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := l.Pipeline()
			if err != nil {
				t.Error(err)
			}
			results[i] = p
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestLoader_ErrorIsSticky(t *testing.T) {
	cfg := testdataConfig()
	cfg.ScalerPath = filepath.Join("testdata", "scaler_degenerate.json")
	l := NewLoader(cfg, nil)

	_, err := l.Pipeline()
	require.ErrorIs(t, err, models.ErrDegenerateScale)
	_, err2 := l.Pipeline()
	assert.Equal(t, err, err2)
	assert.NoError(t, l.Close())
}

func TestLoader_Stale(t *testing.T) {
	l := NewLoader(testdataConfig(), nil)
	assert.False(t, l.Stale())
	l.MarkStale("testdata/model.json")
	l.MarkStale("testdata/model.json")
	assert.True(t, l.Stale())
}
