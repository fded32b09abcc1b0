// Package storage defines the persistence interface for prediction history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/tumorcheck/internal/models"
)

// ErrNotFound is returned when a prediction id does not exist.
var ErrNotFound = errors.New("prediction not found")

// Storage defines prediction history operations.
type Storage interface {
	CreatePrediction(ctx context.Context, rec *models.PredictionRecord) error
	GetPrediction(ctx context.Context, id string) (*models.PredictionRecord, error)
	ListPredictions(ctx context.Context, offset, limit int) ([]*models.PredictionRecord, error)
	DeletePrediction(ctx context.Context, id string) error

	// Stats
	CountPredictions(ctx context.Context) (int64, error)
	CountByLabel(ctx context.Context) (map[models.Label]int64, error)

	Close() error
}
