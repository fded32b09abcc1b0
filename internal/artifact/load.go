// Package artifact loads the persisted scaler and classifier.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/tumorcheck/internal/classifier"
	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/scaler"
	"github.com/hyperjump/tumorcheck/internal/schema"
)

// decodeFile reads path as JSON or YAML depending on its extension.
func decodeFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported artifact format %q (use .json, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

// LoadScaler reads scaler parameters from path and validates them.
func LoadScaler(path string) (*scaler.Scaler, error) {
	var p scaler.Params
	if err := decodeFile(path, &p); err != nil {
		return nil, err
	}
	s, err := scaler.New(p)
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", path, err)
	}
	return s, nil
}

// LoadNetwork reads a dense-v1 network from path.
func LoadNetwork(path string) (*classifier.FeedForward, error) {
	var n classifier.Network
	if err := decodeFile(path, &n); err != nil {
		return nil, err
	}
	ff, err := classifier.NewFeedForward(n)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return ff, nil
}

// BackendFor resolves the configured backend; empty picks by file extension.
func BackendFor(cfg config.ArtifactsConfig) string {
	if cfg.Backend != "" {
		return cfg.Backend
	}
	if strings.EqualFold(filepath.Ext(cfg.ModelPath), ".onnx") {
		return "onnx"
	}
	return "native"
}

// LoadClassifier loads the model with the configured backend.
func LoadClassifier(cfg config.ArtifactsConfig) (classifier.Classifier, error) {
	switch backend := BackendFor(cfg); backend {
	case "native":
		ff, err := LoadNetwork(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		return ff, nil
	case "onnx":
		c, err := classifier.NewONNXClassifier(cfg.ModelPath, schema.Size, classifier.ONNXOptions{
			LibraryPath: cfg.ONNXLibraryPath,
			InputName:   cfg.ONNXInputName,
			OutputName:  cfg.ONNXOutputName,
		})
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", cfg.ModelPath, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", backend)
	}
}

// Fingerprint returns a short content hash over the given files, in order.
// The same bytes always yield the same fingerprint.
func Fingerprint(paths ...string) (string, error) {
	h := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:16], nil
}
