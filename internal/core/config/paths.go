package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	StateDir     string
	DefaultsPath string
	ExportOutput string
	NotebookPath string
}

// ResolvePaths makes every configured path absolute relative to base.
func ResolvePaths(cfg *Config, base string) (ResolvedPaths, error) {
	if strings.TrimSpace(base) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}

	stateDir := ResolveRelative(base, cfg.Paths.StateDir)
	resolved := ResolvedPaths{
		StateDir:     stateDir,
		DefaultsPath: ResolveRelative(stateDir, cfg.Defaults.Path),
	}
	if out := strings.TrimSpace(cfg.Export.Output); out != "" && out != "-" {
		resolved.ExportOutput = ResolveRelative(base, out)
	}
	if nb := strings.TrimSpace(cfg.Notebook.Path); nb != "" {
		resolved.NotebookPath = ResolveRelative(base, nb)
	}
	return resolved, nil
}

func ResolveRelative(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(base, path))
}
