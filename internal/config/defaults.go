package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Artifacts.ScalerPath == "" {
		cfg.Artifacts.ScalerPath = "/usr/local/var/tumorcheck/artifacts/scaler.json"
	}
	if cfg.Artifacts.ModelPath == "" {
		cfg.Artifacts.ModelPath = "/usr/local/var/tumorcheck/artifacts/model.json"
	}
	if cfg.Artifacts.ONNXInputName == "" {
		cfg.Artifacts.ONNXInputName = "input"
	}
	if cfg.Artifacts.ONNXOutputName == "" {
		cfg.Artifacts.ONNXOutputName = "output"
	}
	if cfg.Inference.CacheSize == 0 {
		cfg.Inference.CacheSize = 10000
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/tumorcheck/data/predictions.db"
	}
	if cfg.Log.File != "" {
		if cfg.Log.MaxSizeMB == 0 {
			cfg.Log.MaxSizeMB = 100
		}
		if cfg.Log.MaxBackups == 0 {
			cfg.Log.MaxBackups = 5
		}
		if cfg.Log.MaxAgeDays == 0 {
			cfg.Log.MaxAgeDays = 28
		}
	}
}
