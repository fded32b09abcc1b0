package artifact

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
)

// Loader builds the pipeline the first time it is asked for and hands the
// same immutable pipeline to every later caller. Concurrent first calls wait
// for the single load to finish.
type Loader struct {
	cfg    config.ArtifactsConfig
	logger *zap.Logger

	once     sync.Once
	pipeline *pipeline.Pipeline
	err      error
	stale    atomic.Bool
}

// NewLoader returns a loader for the configured artifacts. Nothing is read until Pipeline is called.
func NewLoader(cfg config.ArtifactsConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cfg: cfg, logger: logger}
}

// Pipeline loads the artifacts once and returns the result of that load.
func (l *Loader) Pipeline() (*pipeline.Pipeline, error) {
	l.once.Do(l.load)
	return l.pipeline, l.err
}

func (l *Loader) load() {
	s, err := LoadScaler(l.cfg.ScalerPath)
	if err != nil {
		l.err = err
		return
	}
	c, err := LoadClassifier(l.cfg)
	if err != nil {
		l.err = err
		return
	}
	version, err := Fingerprint(l.cfg.ScalerPath, l.cfg.ModelPath)
	if err != nil {
		_ = c.Close()
		l.err = fmt.Errorf("fingerprint artifacts: %w", err)
		return
	}
	p, err := pipeline.New(s, c, pipeline.WithVersion(version))
	if err != nil {
		_ = c.Close()
		l.err = err
		return
	}
	l.pipeline = p
	l.logger.Info("artifacts loaded",
		zap.String("scaler_path", l.cfg.ScalerPath),
		zap.String("model_path", l.cfg.ModelPath),
		zap.String("backend", c.Backend()),
		zap.String("model_version", version),
	)
}

// Config returns the artifact configuration.
func (l *Loader) Config() config.ArtifactsConfig {
	return l.cfg
}

// MarkStale records that the files on disk no longer match what was loaded.
// The loaded pipeline is kept; picking up new artifacts requires a restart.
func (l *Loader) MarkStale(path string) {
	if l.stale.CompareAndSwap(false, true) {
		l.logger.Warn("artifact changed on disk; restart to load it", zap.String("path", path))
	}
}

// Stale reports whether MarkStale has been called.
func (l *Loader) Stale() bool {
	return l.stale.Load()
}

// Close releases the loaded classifier, if any.
func (l *Loader) Close() error {
	if l.pipeline != nil {
		return l.pipeline.Close()
	}
	return nil
}
