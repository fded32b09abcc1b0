// Package integration runs the full stack: artifacts on disk, HTTP server, history database.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/tumorcheck/internal/artifact"
	"github.com/hyperjump/tumorcheck/internal/batch"
	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
	"github.com/hyperjump/tumorcheck/internal/schema"
	"github.com/hyperjump/tumorcheck/internal/server"
	"github.com/hyperjump/tumorcheck/internal/storage"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*httptest.Server, *artifact.Loader) {
	t.Helper()
	testdata, err := filepath.Abs("../../internal/artifact/testdata")
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{}
	cfg.Artifacts.ScalerPath = filepath.Join(testdata, "scaler.json")
	cfg.Artifacts.ModelPath = filepath.Join(testdata, "model.json")
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "predictions.db")
	config.ApplyDefaults(cfg)

	loader := artifact.NewLoader(cfg.Artifacts, zap.NewNop())
	t.Cleanup(func() { _ = loader.Close() })
	p, err := loader.Pipeline()
	if err != nil {
		t.Fatal(err)
	}
	cached, err := pipeline.NewCached(p, cfg.Inference.CacheSize)
	if err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := server.NewServer(cached, store, cfg, zap.NewNop(), server.WithStaleCheck(loader.Stale))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, loader
}

func predict(t *testing.T, base string, v models.FeatureVector) (int, models.PredictResponse) {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(base+"/api/v1/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out models.PredictResponse
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode, out
}

func scaled(factor float64) models.FeatureVector {
	v := schema.Defaults()
	for i := range v {
		v[i].Value *= factor
	}
	return v
}

func TestIntegration_Predict(t *testing.T) {
	ts, _ := setup(t)

	tests := []struct {
		name   string
		factor float64
		want   float64
		label  models.Label
	}{
		{"defaults", 1, 0.4762678458734389, models.LabelBenign},
		{"half", 0.5, 0.5411566681502281, models.LabelMalignant},
		{"one and a half", 1.5, 0.4650570548417855, models.LabelBenign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := predict(t, ts.URL, scaled(tt.factor))
			if code != http.StatusOK {
				t.Fatalf("status %d", code)
			}
			if diff := resp.Probability - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("probability = %v, want %v", resp.Probability, tt.want)
			}
			if resp.Label != tt.label {
				t.Errorf("label = %s, want %s", resp.Label, tt.label)
			}
			if !strings.HasPrefix(resp.ModelVersion, "sha256:") {
				t.Errorf("model version = %q", resp.ModelVersion)
			}
		})
	}

	// Same input twice is a cache hit with an identical answer.
	_, first := predict(t, ts.URL, schema.Defaults())
	_, second := predict(t, ts.URL, schema.Defaults())
	if first.Probability != second.Probability || first.ID == second.ID {
		t.Errorf("repeat prediction: %+v vs %+v", first, second)
	}

	resp, err := http.Get(ts.URL + "/api/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st models.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Predictions != 5 || st.Labels[models.LabelMalignant] != 1 {
		t.Errorf("status counts: %+v", st)
	}
	if st.Cache == nil || st.Cache.Hits < 1 {
		t.Errorf("cache stats: %+v", st.Cache)
	}
	if st.DiskUsageBytes <= 0 {
		t.Errorf("disk usage = %d", st.DiskUsageBytes)
	}
}

func TestIntegration_SchemaMismatchIsNotRecorded(t *testing.T) {
	ts, _ := setup(t)

	v := schema.Defaults()
	v[0], v[1] = v[1], v[0]
	if code, _ := predict(t, ts.URL, v); code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", code)
	}

	resp, err := http.Get(ts.URL + "/api/v1/predictions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list struct {
		Predictions []models.PredictionRecord `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Predictions) != 0 {
		t.Errorf("rejected request was recorded: %+v", list.Predictions)
	}
}

func TestIntegration_StaleArtifacts(t *testing.T) {
	ts, loader := setup(t)

	loader.MarkStale("model.json")
	resp, err := http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready without fail_when_stale: %d", resp.StatusCode)
	}
	// The loaded pipeline keeps answering.
	if code, _ := predict(t, ts.URL, schema.Defaults()); code != http.StatusOK {
		t.Errorf("predict after stale: %d", code)
	}
}

func TestIntegration_BatchMatchesAPI(t *testing.T) {
	ts, loader := setup(t)
	p, err := loader.Pipeline()
	if err != nil {
		t.Fatal(err)
	}

	var csv strings.Builder
	csv.WriteString(`"` + strings.Join(schema.Names(), `","`) + "\"\n")
	for _, f := range []float64{1, 0.5} {
		vals := scaled(f).Values()
		parts := make([]string, len(vals))
		for i, x := range vals {
			b, _ := json.Marshal(x)
			parts[i] = string(b)
		}
		csv.WriteString(strings.Join(parts, ",") + "\n")
	}
	rows, err := batch.ReadCSV(strings.NewReader(csv.String()))
	if err != nil {
		t.Fatal(err)
	}
	results, err := batch.Score(t.Context(), p, rows, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range []float64{1, 0.5} {
		_, api := predict(t, ts.URL, scaled(f))
		if results[i].Probability != api.Probability || results[i].Label != api.Label {
			t.Errorf("row %d: batch %+v, api %+v", i, results[i], api)
		}
	}
}
