package config

import (
	"time"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Defaults      Defaults      `toml:"defaults"`
	Database      Database      `toml:"database"`
	Export        Export        `toml:"export"`
	Notebook      Notebook      `toml:"notebook"`
	Scan          Scan          `toml:"scan"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Defaults configures the per-sweep-type form defaults store.
type Defaults struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

// Database is the persistence target used by plan entries that set
// persist = true without their own database table.
type Database struct {
	Path       string `toml:"path"`
	Experiment string `toml:"experiment"`
	Sample     string `toml:"sample"`
}

type Export struct {
	Output string `toml:"output"` // empty writes to stdout
}

type Notebook struct {
	Path string `toml:"path"`
	// After is the cell index new code is inserted after; -1 appends.
	After int `toml:"after"`
}

type Scan struct {
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
	CacheSize    int      `toml:"cache_size"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Defaults: Defaults{Enabled: true},
		Notebook: Notebook{After: -1},
	}
	applyDefaults(cfg)
	return cfg
}
