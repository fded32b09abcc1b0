// Package config provides configuration loading and structs for the tumorcheck server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Inference InferenceConfig `yaml:"inference"`
	Storage   StorageConfig   `yaml:"storage"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ArtifactsConfig points at the persisted scaler and classifier.
type ArtifactsConfig struct {
	ScalerPath string `yaml:"scaler_path"`
	ModelPath  string `yaml:"model_path"`
	// Backend is "native" (dense-v1 JSON/YAML network) or "onnx". Empty picks
	// onnx for .onnx files and native otherwise.
	Backend         string `yaml:"backend"`
	ONNXLibraryPath string `yaml:"onnx_library_path"`
	ONNXInputName   string `yaml:"onnx_input_name"`
	ONNXOutputName  string `yaml:"onnx_output_name"`
	// Watch logs a warning and marks the artifacts stale when the files change on disk.
	Watch bool `yaml:"watch"`
	// FailWhenStale makes /ready report 503 once the artifacts are stale.
	FailWhenStale bool `yaml:"fail_when_stale"`
}

// InferenceConfig holds inference settings.
type InferenceConfig struct {
	// CacheSize is the number of memoized predictions; negative disables the cache.
	CacheSize int `yaml:"cache_size"`
}

// StorageConfig holds the prediction history database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// HistoryConfig controls whether predictions are recorded.
type HistoryConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// EnabledOrDefault returns whether history is recorded; defaults to true when unset.
func (h *HistoryConfig) EnabledOrDefault() bool {
	if h.Enabled != nil {
		return *h.Enabled
	}
	return true
}

// LogConfig holds the optional rotated log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Artifacts.ScalerPath = expandPath(cfg.Artifacts.ScalerPath, configDir)
	cfg.Artifacts.ModelPath = expandPath(cfg.Artifacts.ModelPath, configDir)
	if cfg.Artifacts.ONNXLibraryPath != "" {
		cfg.Artifacts.ONNXLibraryPath = expandPath(cfg.Artifacts.ONNXLibraryPath, configDir)
	}
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File, configDir)
	}

	return &cfg, nil
}

// Validate rejects settings that cannot work.
func Validate(cfg *Config) error {
	switch cfg.Artifacts.Backend {
	case "", "native", "onnx":
	default:
		return fmt.Errorf("invalid artifacts.backend %q: use native or onnx", cfg.Artifacts.Backend)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
