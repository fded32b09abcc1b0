package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tumorcheck/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		source TEXT NOT NULL,
		features TEXT NOT NULL,
		probability REAL NOT NULL,
		label TEXT NOT NULL,
		model_version TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
	CREATE INDEX IF NOT EXISTS idx_predictions_label ON predictions(label);
	`
	_, err := db.Exec(schema)
	return err
}

// CreatePrediction inserts a prediction. An empty ID is replaced with a new
// UUID and a zero CreatedAt with the current time.
func (s *SQLiteStorage) CreatePrediction(ctx context.Context, rec *models.PredictionRecord) error {
	featuresJSON, err := json.Marshal(rec.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO predictions (id, created_at, source, features, probability, label, model_version)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, string(rec.Source), string(featuresJSON), rec.Probability, string(rec.Label), rec.ModelVersion,
	)
	return err
}

// GetPrediction returns a prediction by ID.
func (s *SQLiteStorage) GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, features, probability, label, model_version
		 FROM predictions WHERE id = ?`, id,
	)
	rec, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListPredictions returns predictions, newest first, with offset and limit.
func (s *SQLiteStorage) ListPredictions(ctx context.Context, offset, limit int) ([]*models.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, features, probability, label, model_version
		 FROM predictions ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.PredictionRecord
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// DeletePrediction removes a prediction by ID.
func (s *SQLiteStorage) DeletePrediction(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM predictions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// CountPredictions returns the total number of predictions.
func (s *SQLiteStorage) CountPredictions(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&count)
	return count, err
}

// CountByLabel returns the number of predictions per label.
func (s *SQLiteStorage) CountByLabel(ctx context.Context) (map[models.Label]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.Label]int64{
		models.LabelMalignant: 0,
		models.LabelBenign:    0,
	}
	for rows.Next() {
		var label string
		var n int64
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[models.Label(label)] = n
	}
	return counts, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (*models.PredictionRecord, error) {
	var rec models.PredictionRecord
	var source, label, featuresJSON string
	var version sql.NullString
	if err := sc.Scan(&rec.ID, &rec.CreatedAt, &source, &featuresJSON, &rec.Probability, &label, &version); err != nil {
		return nil, err
	}
	rec.Source = models.Source(source)
	rec.Label = models.Label(label)
	rec.ModelVersion = version.String
	if err := json.Unmarshal([]byte(featuresJSON), &rec.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	return &rec, nil
}
