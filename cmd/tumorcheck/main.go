// Package main is the tumorcheck CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/tumorcheck/internal/artifact"
	"github.com/hyperjump/tumorcheck/internal/batch"
	"github.com/hyperjump/tumorcheck/internal/cli"
	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
	"github.com/hyperjump/tumorcheck/internal/schema"
	"github.com/hyperjump/tumorcheck/internal/server"
	"github.com/hyperjump/tumorcheck/internal/storage"
	"github.com/hyperjump/tumorcheck/internal/watcher"
	"github.com/hyperjump/tumorcheck/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tumorcheck/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "predict":
		runPredict()
	case "batch":
		runBatch()
	case "schema":
		runSchema()
	case "history":
		runHistory()
	case "status":
		runStatus()
	case "check":
		runCheck()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("tumorcheck version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func newLogger(cfg *config.Config, debug bool) *zap.Logger {
	logger, err := utils.NewLoggerWithFile(debug, utils.FileSink{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fatalf("%v", err)
	}
	return format
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	debugMode := cfg.Debug || *debug
	logger := newLogger(cfg, debugMode)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Artifacts.Watch {
		watchOpts := []watcher.WatcherOption{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		w := watcher.NewWatcher(
			[]string{cfg.Artifacts.ScalerPath, cfg.Artifacts.ModelPath},
			components.Loader.MarkStale,
			watchOpts...,
		)
		if err := w.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(
		components.Inferer,
		components.Storage,
		cfg,
		logger,
		server.WithStaleCheck(components.Loader.Stale),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
	}
}

// setFlag collects repeated -set name=value overrides.
type setFlag map[string]float64

func (s setFlag) String() string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + strconv.FormatFloat(s[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (s setFlag) Set(v string) error {
	name, raw, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("want name=value, got %q", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", name, raw)
	}
	s[name] = f
	return nil
}

// buildFeatures returns the vector to predict: the input file (or the
// defaults when there is none) with overrides applied.
func buildFeatures(inputPath string, overrides map[string]float64) (models.FeatureVector, error) {
	if inputPath == "" {
		return schema.Parse(overrides)
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	v, err := decodeFeatures(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inputPath, err)
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if schema.Index(name) < 0 {
			return nil, &models.SchemaError{Unexpected: []string{name}, Position: -1}
		}
		v = v.Set(name, overrides[name])
	}
	return v, nil
}

// decodeFeatures accepts a bare feature object or {"features": {...}}.
func decodeFeatures(data []byte) (models.FeatureVector, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if _, ok := envelope["features"]; ok && len(envelope) == 1 {
		var req models.PredictRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}
		return req.Features, nil
	}
	var v models.FeatureVector
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func runPredict() {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = load artifacts locally)")
	inputPath := fs.String("input", "", "JSON file with the 30 features (default: schema defaults)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	record := fs.Bool("record", true, "record the prediction in history (local mode)")
	overrides := setFlag{}
	fs.Var(overrides, "set", "override one feature, name=value (repeatable)")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	features, err := buildFeatures(*inputPath, overrides)
	if err != nil {
		fatalf("Invalid input: %v", err)
	}

	var resp *models.PredictResponse
	if *serverURL != "" {
		resp, err = predictViaHTTP(*serverURL, features)
		if err != nil {
			fatalf("Prediction failed: %v", err)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		logger := newLogger(cfg, cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, *record)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()

		result, err := components.Inferer.Infer(features)
		if err != nil {
			fatalf("Prediction failed: %v", err)
		}
		info := components.Inferer.Info()
		resp = &models.PredictResponse{
			Probability:  result.Probability,
			Label:        result.Label,
			ModelVersion: info.Version,
		}
		if components.Storage != nil {
			rec := &models.PredictionRecord{
				Source:       models.SourceCLI,
				Features:     features,
				Probability:  result.Probability,
				Label:        result.Label,
				ModelVersion: info.Version,
			}
			if err := components.Storage.CreatePrediction(context.Background(), rec); err != nil {
				logger.Warn("failed to record prediction", zap.Error(err))
			} else {
				resp.ID = rec.ID
			}
		}
	}
	if err := cli.WritePrediction(os.Stdout, resp, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func predictViaHTTP(serverURL string, features models.FeatureVector) (*models.PredictResponse, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/predict", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out models.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outPath := fs.String("out", "", "write results to a .csv, .xlsx or .json file")
	workers := fs.Int("workers", 0, "parallel workers (0 = number of CPUs)")
	outputFormat := fs.String("output", "text", "summary format: text or json")
	record := fs.Bool("record", false, "record scored rows in history")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tumorcheck batch [flags] <input.csv|input.xlsx>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	inputPath := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cfg, cfg.Debug)
	defer logger.Sync()

	rows, err := batch.ReadFile(inputPath)
	if err != nil {
		fatalf("Failed to read %s: %v", inputPath, err)
	}
	components, err := initializeComponents(cfg, logger, *record)
	if err != nil {
		fatalf("Failed to initialize: %v", err)
	}
	defer components.Close()

	ctx := context.Background()
	results, err := batch.Score(ctx, components.Inferer, rows, *workers)
	if err != nil {
		fatalf("Batch failed: %v", err)
	}
	if *outPath != "" {
		if err := batch.WriteFile(*outPath, results); err != nil {
			fatalf("Failed to write %s: %v", *outPath, err)
		}
	}
	if components.Storage != nil {
		version := components.Inferer.Info().Version
		for _, r := range results {
			if !r.OK() {
				continue
			}
			rec := &models.PredictionRecord{
				Source:       models.SourceBatch,
				Features:     r.Features,
				Probability:  r.Probability,
				Label:        r.Label,
				ModelVersion: version,
			}
			if err := components.Storage.CreatePrediction(ctx, rec); err != nil {
				logger.Warn("failed to record prediction", zap.Int("line", r.Line), zap.Error(err))
			}
		}
	}

	report := &cli.BatchReport{
		Input:   inputPath,
		Output:  *outPath,
		Summary: batch.Summarize(results),
	}
	if *outPath == "" || format == cli.OutputText {
		report.Results = results
	}
	if err := cli.WriteBatchReport(os.Stdout, report, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runSchema() {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	if err := cli.WriteSchema(os.Stdout, schema.Groups(), parseFormat(*outputFormat)); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func runHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "", "server URL (empty = open the history database directly)")
	limit := fs.Int("limit", 20, "number of predictions")
	offset := fs.Int("offset", 0, "number of predictions to skip")
	deleteID := fs.String("delete", "", "delete the prediction with this id")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	if *serverURL != "" {
		base := strings.TrimRight(*serverURL, "/")
		if *deleteID != "" {
			if err := deleteViaHTTP(base, *deleteID); err != nil {
				fatalf("Delete failed: %v", err)
			}
			fmt.Printf("Deleted %s\n", *deleteID)
			return
		}
		recs, err := historyViaHTTP(base, *offset, *limit)
		if err != nil {
			fatalf("History failed: %v", err)
		}
		if err := cli.WriteHistory(os.Stdout, recs, format); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fatalf("Failed to open history: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	if *deleteID != "" {
		if err := store.DeletePrediction(ctx, *deleteID); err != nil {
			fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Deleted %s\n", *deleteID)
		return
	}
	recs, err := store.ListPredictions(ctx, *offset, *limit)
	if err != nil {
		fatalf("History failed: %v", err)
	}
	if err := cli.WriteHistory(os.Stdout, recs, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func historyViaHTTP(base string, offset, limit int) ([]*models.PredictionRecord, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	resp, err := http.Get(base + "/api/v1/predictions?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out struct {
		Predictions []*models.PredictionRecord `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Predictions, nil
}

func deleteViaHTTP(base, id string) error {
	req, err := http.NewRequest(http.MethodDelete, base+"/api/v1/predictions/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (local mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load artifacts locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	var status *models.StatusReport
	if *serverURL != "" {
		res, err := statusViaHTTP(strings.TrimRight(*serverURL, "/"))
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		status = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		logger := newLogger(cfg, cfg.Debug)
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, true)
		if err != nil {
			fatalf("Failed to initialize: %v", err)
		}
		defer components.Close()
		status, err = server.BuildStatus(context.Background(), components.Inferer, components.Storage, cfg)
		if err != nil {
			fatalf("Status failed: %v", err)
		}
		status.Ready = true
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fatalf("Output failed: %v", err)
	}
}

func statusViaHTTP(base string) (*models.StatusReport, error) {
	resp, err := http.Get(base + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var s models.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// checkReport is printed by the check command.
type checkReport struct {
	pipeline.Info
	ScalerPath string                  `json:"scaler_path"`
	ModelPath  string                  `json:"model_path"`
	Defaults   models.PredictionResult `json:"defaults"`
}

func runCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fatalf("Failed to load config: %v", err)
	}
	report, err := checkArtifacts(cfg.Artifacts)
	if err != nil {
		fatalf("Artifacts are not usable: %v", err)
	}
	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fatalf("Output failed: %v", err)
		}
		return
	}
	fmt.Printf("scaler:         %s\n", report.ScalerPath)
	fmt.Printf("model:          %s\n", report.ModelPath)
	fmt.Printf("model_version:  %s\n", report.Version)
	fmt.Printf("backend:        %s\n", report.Backend)
	fmt.Printf("input_width:    %d\n", report.InputWidth)
	fmt.Printf("defaults:       %.4f %s\n", report.Defaults.Probability, report.Defaults.Label)
	fmt.Println("OK")
}

// checkArtifacts loads the artifacts and scores the default feature vector.
func checkArtifacts(cfg config.ArtifactsConfig) (*checkReport, error) {
	loader := artifact.NewLoader(cfg, nil)
	defer loader.Close()
	p, err := loader.Pipeline()
	if err != nil {
		return nil, err
	}
	res, err := p.Infer(schema.Defaults())
	if err != nil {
		return nil, fmt.Errorf("score defaults: %w", err)
	}
	return &checkReport{
		Info:       p.Info(),
		ScalerPath: cfg.ScalerPath,
		ModelPath:  cfg.ModelPath,
		Defaults:   *res,
	}, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "where to write the config file")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*configPath, *force); err != nil {
		fatalf("Init failed: %v", err)
	}
	fmt.Printf("Wrote %s\n", *configPath)
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return config.Save(path, cfg)
}

// Components holds what the commands share: the loaded artifacts, the
// (possibly cached) inferer and the optional history store.
type Components struct {
	Loader   *artifact.Loader
	Inferer  pipeline.Inferer
	Storage  storage.Storage
	Pipeline *pipeline.Pipeline
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Loader != nil {
		_ = c.Loader.Close()
	}
}

// initializeComponents loads the artifacts once and, when withHistory is set
// and history is enabled in cfg, opens the history database.
func initializeComponents(cfg *config.Config, logger *zap.Logger, withHistory bool) (*Components, error) {
	loader := artifact.NewLoader(cfg.Artifacts, logger)
	p, err := loader.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	c := &Components{Loader: loader, Pipeline: p, Inferer: p}

	if cfg.Inference.CacheSize > 0 {
		cached, err := pipeline.NewCached(p, cfg.Inference.CacheSize)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create inference cache: %w", err)
		}
		c.Inferer = cached
	}

	if withHistory && cfg.History.EnabledOrDefault() {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
	}
	if logger != nil {
		logger.Debug("components initialized",
			zap.Int("cache_size", cfg.Inference.CacheSize),
			zap.Bool("history", c.Storage != nil),
		)
	}
	return c, nil
}

func printUsage() {
	fmt.Println(`tumorcheck - Breast tumor malignancy classifier

Usage:
  tumorcheck server [flags]            Start the HTTP server
  tumorcheck predict [flags]           Predict one sample
  tumorcheck batch [flags] <file>      Score every row of a .csv or .xlsx file
  tumorcheck schema [flags]            List the 30 features with defaults and ranges
  tumorcheck history [flags]           List or delete recorded predictions
  tumorcheck status [flags]            Show model and history status
  tumorcheck check [flags]             Load the artifacts and score the defaults
  tumorcheck init [flags]              Write a config file with default settings
  tumorcheck version                   Show version
  tumorcheck help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tumorcheck/config.yaml)
  --debug            Enable debug logging

Predict Flags:
  --config string    Config file path (local mode)
  --server string    Server URL. Empty (default) loads the artifacts locally.
  --input string     JSON file with the features, as an object or {"features": {...}}
  --set name=value   Override one feature (repeatable); starts from the defaults without --input
  --record           Record the prediction in history (default: true)
  --output string    Output format: text or json (default: text)

Batch Flags:
  --out string       Write results to .csv, .xlsx or .json
  --workers int      Parallel workers (default: number of CPUs)
  --record           Record scored rows in history (default: false)
  --output string    Summary format: text or json

History Flags:
  --server string    Server URL. Empty (default) opens the database directly.
  --limit int        Number of predictions (default: 20)
  --offset int       Predictions to skip
  --delete string    Delete the prediction with this id

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to load locally.
  --output string    Output format: text or json (default: text)

Examples:
  tumorcheck server
  tumorcheck predict --set radius_mean=20.5 --set "concave points_worst=0.2"
  tumorcheck predict --input sample.json --output json
  tumorcheck predict --server http://localhost:8080 --input sample.json
  tumorcheck batch --out results.xlsx samples.csv
  tumorcheck schema --output json
  tumorcheck history --limit 5
  tumorcheck check`)
}
