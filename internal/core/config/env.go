package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SWEEPQ_[SECTION]_[KEY] (e.g., SWEEPQ_DATABASE_SAMPLE).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths.StateDir, "SWEEPQ_PATHS_STATE_DIR")

	setEnvBool(&cfg.Defaults.Enabled, "SWEEPQ_DEFAULTS_ENABLED")
	setEnvString(&cfg.Defaults.Path, "SWEEPQ_DEFAULTS_PATH")
	setEnvDuration(&cfg.Defaults.BusyTimeout, "SWEEPQ_DEFAULTS_BUSY_TIMEOUT")

	setEnvString(&cfg.Database.Path, "SWEEPQ_DATABASE_PATH")
	setEnvString(&cfg.Database.Experiment, "SWEEPQ_DATABASE_EXPERIMENT")
	setEnvString(&cfg.Database.Sample, "SWEEPQ_DATABASE_SAMPLE")

	setEnvString(&cfg.Export.Output, "SWEEPQ_EXPORT_OUTPUT")

	setEnvString(&cfg.Notebook.Path, "SWEEPQ_NOTEBOOK_PATH")
	setEnvInt(&cfg.Notebook.After, "SWEEPQ_NOTEBOOK_AFTER")

	setEnvInt(&cfg.Scan.CacheSize, "SWEEPQ_SCAN_CACHE_SIZE")

	setEnvDuration(&cfg.Watch.Debounce, "SWEEPQ_WATCH_DEBOUNCE")

	setEnvBool(&cfg.Observability.Enabled, "SWEEPQ_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "SWEEPQ_OBSERVABILITY_ADDRESS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key)
			*target = d
		}
	}
}
