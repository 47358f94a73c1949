package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

const currentVersion = 1

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 || cfg.Version > currentVersion {
		return fmt.Errorf("unsupported config version %d (supported: 1..%d)", cfg.Version, currentVersion)
	}
	return nil
}

func validateDefaults(cfg *Config) error {
	if !cfg.Defaults.Enabled {
		return nil
	}
	if strings.ContainsRune(cfg.Defaults.Path, '?') {
		return fmt.Errorf("defaults.path must be a file path, got %q", cfg.Defaults.Path)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for _, pattern := range append(append([]string(nil), cfg.Scan.ExcludeDirs...), cfg.Scan.ExcludeFiles...) {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("scan exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Observability.Address); err != nil {
		return fmt.Errorf("observability.address %q: %w", cfg.Observability.Address, err)
	}
	return nil
}

// Validate runs every check and collects the failures.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validateDefaults,
		validateScan,
		validateWatch,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
