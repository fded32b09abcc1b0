package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/tumorcheck/internal/config"
	"github.com/hyperjump/tumorcheck/internal/models"
	"github.com/hyperjump/tumorcheck/internal/pipeline"
	"github.com/hyperjump/tumorcheck/internal/schema"
	"github.com/hyperjump/tumorcheck/internal/storage"
	"go.uber.org/zap"
)

const (
	maxBodyBytes     = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 500
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.broken.Load() {
		s.respondError(w, http.StatusServiceUnavailable, "artifacts failed; restart required")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	features, err := decodeFeatures(body)
	if err != nil {
		if errors.Is(err, models.ErrInvalidValue) {
			s.respondErrorDetails(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.inferer.Infer(features)
	if err != nil {
		s.respondInferError(w, err)
		return
	}

	info := s.inferer.Info()
	resp := models.PredictResponse{
		Probability:  result.Probability,
		Label:        result.Label,
		ModelVersion: info.Version,
	}
	if s.storage != nil {
		rec := &models.PredictionRecord{
			ID:           uuid.New().String(),
			Source:       models.SourceAPI,
			Features:     features,
			Probability:  result.Probability,
			Label:        result.Label,
			ModelVersion: info.Version,
		}
		if err := s.storage.CreatePrediction(r.Context(), rec); err != nil {
			s.logger.Warn("failed to record prediction", zap.Error(err))
		} else {
			resp.ID = rec.ID
		}
	}
	s.logger.Debug("prediction",
		zap.Float64("probability", result.Probability),
		zap.String("label", string(result.Label)),
		zap.String("id", resp.ID),
	)
	s.respondJSON(w, http.StatusOK, resp)
}

// decodeFeatures accepts either the bare feature object or {"features": {...}}.
func decodeFeatures(body []byte) (models.FeatureVector, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if raw, ok := envelope["features"]; ok && len(envelope) == 1 {
		var req models.PredictRequest
		if err := json.Unmarshal(raw, &req.Features); err != nil {
			return nil, err
		}
		return req.Features, nil
	}
	var v models.FeatureVector
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Server) respondInferError(w http.ResponseWriter, err error) {
	var se *models.SchemaError
	switch {
	case errors.As(err, &se):
		s.respondErrorDetails(w, http.StatusBadRequest, models.ErrSchemaMismatch.Error(), se)
	case models.IsRequestError(err):
		s.respondErrorDetails(w, http.StatusBadRequest, err.Error(), nil)
	case models.IsArtifactError(err):
		if s.broken.CompareAndSwap(false, true) {
			s.logger.Error("artifact failure; marking server unready", zap.Error(err))
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("inference failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

type schemaResponse struct {
	Size      int            `json:"size"`
	Names     []string       `json:"names"`
	Threshold float64        `json:"threshold"`
	Groups    []schema.Group `json:"groups"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, schemaResponse{
		Size:      schema.Size,
		Names:     schema.Names(),
		Threshold: models.DecisionThreshold,
		Groups:    schema.Groups(),
	})
}

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	recs, err := s.storage.ListPredictions(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list predictions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.PredictionRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": recs,
		"offset":      offset,
		"limit":       limit,
	})
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.storage.GetPrediction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "prediction not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePrediction(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "history not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete prediction request", zap.String("id", id))
	err := s.storage.DeletePrediction(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "prediction not found")
		return
	}
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.Ready() {
		reason := "artifacts failed"
		if !s.broken.Load() {
			reason = "artifacts changed on disk"
		}
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unready", "reason": reason})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := BuildStatus(r.Context(), s.inferer, s.storage, s.config)
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	st.Ready = s.Ready()
	st.ArtifactsStale = s.stale()
	s.respondJSON(w, http.StatusOK, st)
}

// BuildStatus collects model info, history counts and disk usage. store and
// cfg may be nil. Ready is left false for the caller to fill in.
func BuildStatus(ctx context.Context, inf pipeline.Inferer, store storage.Storage, cfg *config.Config) (*models.StatusReport, error) {
	info := inf.Info()
	st := &models.StatusReport{
		ModelVersion:   info.Version,
		Backend:        info.Backend,
		InputWidth:     info.InputWidth,
		Cache:          info.Cache,
		HistoryEnabled: store != nil,
	}
	if store != nil {
		count, err := store.CountPredictions(ctx)
		if err != nil {
			return nil, fmt.Errorf("count predictions: %w", err)
		}
		byLabel, err := store.CountByLabel(ctx)
		if err != nil {
			return nil, fmt.Errorf("count by label: %w", err)
		}
		st.Predictions = count
		st.Labels = byLabel
	}
	if cfg != nil {
		st.ScalerPath = cfg.Artifacts.ScalerPath
		st.ModelPath = cfg.Artifacts.ModelPath
		paths := []string{cfg.Artifacts.ScalerPath, cfg.Artifacts.ModelPath}
		if store != nil {
			db := cfg.Storage.DatabasePath
			st.DatabasePath = db
			paths = append(paths, db, db+"-wal", db+"-shm")
		}
		if n, err := storage.DiskUsageBytes(paths...); err == nil {
			st.DiskUsageBytes = n
		}
	}
	return st, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) respondErrorDetails(w http.ResponseWriter, status int, message string, details interface{}) {
	body := map[string]interface{}{"error": message}
	if details != nil {
		body["details"] = details
	}
	s.respondJSON(w, status, body)
}
