package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if !cfg.History.EnabledOrDefault() {
		t.Error("history should default to enabled")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
artifacts:
  scaler_path: "./artifacts/BC_scaler.json"
  model_path: "./artifacts/model.onnx"
  backend: onnx
storage:
  database_path: "./data/predictions.db"
log:
  file: "./logs/tumorcheck.log"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name, got, want string
	}{
		{"scaler_path", cfg.Artifacts.ScalerPath, filepath.Join(dir, "artifacts", "BC_scaler.json")},
		{"model_path", cfg.Artifacts.ModelPath, filepath.Join(dir, "artifacts", "model.onnx")},
		{"database_path", cfg.Storage.DatabasePath, filepath.Join(dir, "data", "predictions.db")},
		{"log.file", cfg.Log.File, filepath.Join(dir, "logs", "tumorcheck.log")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
	if cfg.Artifacts.Backend != "onnx" {
		t.Errorf("backend = %q, want onnx", cfg.Artifacts.Backend)
	}
	if cfg.Log.MaxSizeMB != 100 {
		t.Errorf("log max_size_mb default: got %d", cfg.Log.MaxSizeMB)
	}
}

func TestLoad_invalidBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("artifacts:\n  backend: keras\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Inference.CacheSize != 10000 {
		t.Errorf("default cache size: got %d", cfg.Inference.CacheSize)
	}
	if cfg.Artifacts.ONNXInputName != "input" || cfg.Artifacts.ONNXOutputName != "output" {
		t.Errorf("default onnx names: got %q/%q", cfg.Artifacts.ONNXInputName, cfg.Artifacts.ONNXOutputName)
	}
	if cfg.Artifacts.ScalerPath == "" || cfg.Artifacts.ModelPath == "" {
		t.Error("artifact paths should be set by default")
	}
	if cfg.Log.MaxSizeMB != 0 {
		t.Error("log rotation defaults should only apply when a log file is set")
	}
}

func TestApplyDefaults_negativeCacheSizeKept(t *testing.T) {
	cfg := &Config{Inference: InferenceConfig{CacheSize: -1}}
	ApplyDefaults(cfg)
	if cfg.Inference.CacheSize != -1 {
		t.Errorf("negative cache size should disable the cache, got %d", cfg.Inference.CacheSize)
	}
}

func TestHistoryConfig_EnabledOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		h := &HistoryConfig{}
		if got := h.EnabledOrDefault(); !got {
			t.Errorf("EnabledOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		h := &HistoryConfig{Enabled: &f}
		if got := h.EnabledOrDefault(); got {
			t.Errorf("EnabledOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Storage.DatabasePath != "/tmp/db" {
		t.Errorf("loaded database path: got %s", loaded.Storage.DatabasePath)
	}
}
