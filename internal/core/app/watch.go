package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"sweepq/internal/core/errors"
	"sweepq/internal/core/watcher"
	"sweepq/internal/engine/parser"

	"golang.org/x/time/rate"
)

const (
	WatchPlan     = "plan"
	WatchNotebook = "notebook"
)

// exportInterval is the minimum gap between two re-exports of the output
// script.
const exportInterval = 500 * time.Millisecond

func newExportLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(exportInterval), 1)
}

// WatchEvent reports the outcome of handling one changed file.
type WatchEvent struct {
	Kind    string
	Path    string
	Entries int                  // plan: entries loaded
	Output  string               // plan: script written, if any
	Cells   []parser.CellMarkers // notebook: sweeps found
	Err     error
}

// Watch reloads planPath into the queue whenever it changes, re-exporting
// to the configured output, and rescans the configured notebook. It blocks
// until ctx is done.
func (a *App) Watch(ctx context.Context, planPath string, onEvent func(WatchEvent)) error {
	if onEvent == nil {
		onEvent = func(WatchEvent) {}
	}

	var roots []string
	if planPath = strings.TrimSpace(planPath); planPath != "" {
		abs, err := filepath.Abs(planPath)
		if err != nil {
			return err
		}
		planPath = abs
		roots = append(roots, planPath)
	}
	if nb := a.Paths().NotebookPath; nb != "" {
		roots = append(roots, nb)
	}

	if len(roots) == 0 {
		return errors.New(errors.CodeValidationError, "nothing to watch: give a plan file or configure [notebook] path")
	}

	limiter := newExportLimiter()
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Scan.ExcludeDirs,
		a.Config.Scan.ExcludeFiles,
		func(paths []string) {
			for _, p := range paths {
				onEvent(a.handleChange(ctx, limiter, p, planPath))
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *App) handleChange(ctx context.Context, limiter *rate.Limiter, path, planPath string) WatchEvent {
	if planPath != "" && filepath.Clean(path) == planPath {
		ev := WatchEvent{Kind: WatchPlan, Path: path}
		ev.Entries, ev.Err = a.LoadPlan(path, true)
		if ev.Err == nil && a.exportOutput() != "" {
			if ev.Err = limiter.Wait(ctx); ev.Err != nil {
				return ev
			}
			ev.Output, ev.Err = a.WriteQueueScript("")
		}
		return ev
	}
	if strings.EqualFold(filepath.Ext(path), ".ipynb") && filepath.Clean(path) == a.Paths().NotebookPath {
		ev := WatchEvent{Kind: WatchNotebook, Path: path}
		ev.Cells, ev.Err = a.ScanNotebook(path)
		return ev
	}
	return WatchEvent{Path: path}
}
