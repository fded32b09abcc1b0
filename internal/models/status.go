package models

// CacheStats reports inference cache effectiveness.
type CacheStats struct {
	Size   int    `json:"size"`
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// StatusReport summarizes the loaded artifacts and the prediction history.
type StatusReport struct {
	ModelVersion   string          `json:"model_version"`
	Backend        string          `json:"backend"`
	InputWidth     int             `json:"input_width"`
	Ready          bool            `json:"ready"`
	ArtifactsStale bool            `json:"artifacts_stale"`
	Cache          *CacheStats     `json:"cache,omitempty"`
	ScalerPath     string          `json:"scaler_path,omitempty"`
	ModelPath      string          `json:"model_path,omitempty"`
	DatabasePath   string          `json:"database_path,omitempty"`
	HistoryEnabled bool            `json:"history_enabled"`
	Predictions    int64           `json:"predictions"`
	Labels         map[Label]int64 `json:"labels,omitempty"`
	DiskUsageBytes int64           `json:"disk_usage_bytes"`
}
