package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultStateDir      = "data/state"
	defaultDefaultsDB    = "defaults.db"
	defaultObservability = "127.0.0.1:9464"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Config{
		Defaults: Defaults{Enabled: true},
		Notebook: Notebook{After: -1},
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = defaultStateDir
	}

	if strings.TrimSpace(cfg.Defaults.Path) == "" {
		cfg.Defaults.Path = defaultDefaultsDB
	}
	if cfg.Defaults.BusyTimeout <= 0 {
		cfg.Defaults.BusyTimeout = 5 * time.Second
	}

	if len(cfg.Scan.ExcludeDirs) == 0 {
		cfg.Scan.ExcludeDirs = []string{".git", ".ipynb_checkpoints", "__pycache__", ".venv"}
	}
	if cfg.Scan.CacheSize <= 0 {
		cfg.Scan.CacheSize = 256
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = defaultObservability
	}
}
