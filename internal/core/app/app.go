package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"sweepq/internal/core/config"
	"sweepq/internal/core/errors"
	"sweepq/internal/data/defaults"
	"sweepq/internal/data/notebook"
	"sweepq/internal/data/plan"
	"sweepq/internal/engine/codegen"
	"sweepq/internal/engine/export"
	"sweepq/internal/engine/parser"
	"sweepq/internal/queue"
	"sweepq/internal/shared/observability"
	"sweepq/internal/shared/util"
	"sweepq/internal/sweep"
)

// App wires the queue store to its inputs (plans, stored defaults) and
// outputs (scripts, notebooks).
type App struct {
	Config   *config.Config
	Queue    *queue.Store
	Scanner  *parser.Scanner
	Defaults *defaults.Store // nil when disabled or unavailable

	mu          sync.RWMutex // guards Config.Database, Config.Export and paths
	baseDir     string
	paths       config.ResolvedPaths
	defaultsErr error
}

type Option func(*App)

// WithQueue shares an existing store instead of creating one.
func WithQueue(q *queue.Store) Option {
	return func(a *App) {
		if q != nil {
			a.Queue = q
		}
	}
}

func WithScanner(s *parser.Scanner) Option {
	return func(a *App) {
		if s != nil {
			a.Scanner = s
		}
	}
}

// New builds an App. Relative paths in cfg resolve against baseDir. A
// defaults store that fails to open leaves the App degraded, not broken.
func New(cfg *config.Config, baseDir string, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	paths, err := config.ResolvePaths(cfg, baseDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		baseDir: baseDir,
		paths:   paths,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Queue == nil {
		a.Queue = queue.NewStore()
	}
	if a.Scanner == nil {
		a.Scanner = parser.NewScanner(cfg.Scan.CacheSize)
	}

	if cfg.Defaults.Enabled {
		store, err := defaults.Open(paths.DefaultsPath, cfg.Defaults.BusyTimeout)
		if err != nil {
			slog.Warn("form defaults disabled", "path", paths.DefaultsPath, "error", err)
			a.defaultsErr = err
		} else {
			a.Defaults = store
		}
	}
	return a, nil
}

func (a *App) Close() error {
	if a.Defaults != nil {
		return a.Defaults.Close()
	}
	return nil
}

func (a *App) Paths() config.ResolvedPaths {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paths
}

// ApplyConfig swaps in the [database] and [export] sections of a reloaded
// config. Other sections need a restart. Safe to call while a watch is
// running.
func (a *App) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New(errors.CodeValidationError, "nil config")
	}
	paths, err := config.ResolvePaths(cfg, a.baseDir)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Config.Database = cfg.Database
	a.Config.Export = cfg.Export
	a.paths.ExportOutput = paths.ExportOutput
	return nil
}

func (a *App) database() config.Database {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config.Database
}

func (a *App) exportOutput() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paths.ExportOutput
}

// LoadPlan adds the plan's entries to the queue, replacing entries with the
// same id in place. With replace set the queue is reconciled to the plan:
// entries missing from it are removed and the rest take the plan's order.
// Surviving entries keep their creation time and the selection.
func (a *App) LoadPlan(path string, replace bool) (int, error) {
	entries, err := plan.Load(path, a.database())
	if err != nil {
		return 0, err
	}
	if replace {
		keep := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			keep[e.ID] = struct{}{}
		}
		for _, e := range a.Queue.Entries() {
			if _, ok := keep[e.ID]; !ok {
				a.Queue.Remove(e.ID)
			}
		}
	}
	for _, e := range entries {
		a.Queue.AddOrReplace(e)
	}
	if replace {
		a.reorder(entries)
	}
	slog.Info("plan loaded", "path", path, "entries", len(entries), "replace", replace)
	return len(entries), nil
}

// reorder moves queued entries into the order of want. Positions before i
// are settled, so each entry only ever moves up.
func (a *App) reorder(want []sweep.Entry) {
	for i, e := range want {
		current := a.Queue.Entries()
		for j := i; j < len(current); j++ {
			if current[j].ID == e.ID {
				if j != i {
					a.Queue.Move(j, i)
				}
				break
			}
		}
	}
}

// SavePlan writes the current queue as a plan file.
func (a *App) SavePlan(path string) error {
	return plan.Save(path, a.Queue.Entries())
}

// ExportQueue renders the whole queue as one script.
func (a *App) ExportQueue() string {
	observability.ExportsTotal.WithLabelValues("queue").Inc()
	return export.ExportSweepQueue(a.Queue.Entries())
}

// ExportEntry renders the queued entry with the given id on its own.
func (a *App) ExportEntry(id string, includeDatabaseAndStart bool) (string, error) {
	e, err := a.queued(id)
	if err != nil {
		return "", err
	}
	observability.ExportsTotal.WithLabelValues("single").Inc()
	return export.ExportSingleEntry(e, includeDatabaseAndStart), nil
}

func (a *App) queued(id string) (sweep.Entry, error) {
	e, ok := a.Queue.Get(id)
	if !ok {
		return sweep.Entry{}, errors.AddContext(errors.New(errors.CodeNotFound, "no queued sweep with that id"), errors.CtxEntryID, id)
	}
	return e, nil
}

// WriteQueueScript writes the exported queue to path, or to the configured
// export output when path is empty.
func (a *App) WriteQueueScript(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = a.exportOutput()
	}
	if path == "" {
		return "", errors.New(errors.CodeValidationError, "no export output configured")
	}
	if err := util.WriteFileAtomic(path, []byte(a.ExportQueue()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write %q: %w", path, err)
	}
	return path, nil
}

// NotebookHost returns the configured notebook as an insertion target.
func (a *App) NotebookHost() notebook.FileHost {
	return notebook.FileHost{Path: a.Paths().NotebookPath, After: a.Config.Notebook.After}
}

// ScanNotebook reports the sweeps constructed in each code cell of the
// notebook at path.
func (a *App) ScanNotebook(path string) ([]parser.CellMarkers, error) {
	nb, err := notebook.Load(path)
	if err != nil {
		return nil, err
	}
	if !a.Scanner.Available() {
		return nil, errors.New(errors.CodeUnavailable, "sweep scanner unavailable")
	}
	codeCells := nb.CodeCells()
	cells := make([]parser.Cell, 0, len(codeCells))
	for _, c := range codeCells {
		cells = append(cells, parser.Cell{Index: c.Index, Source: c.Source})
	}
	return a.Scanner.ScanCells(cells), nil
}

// NewEntryFromDefaults queues a new sweep of type t pre-filled with the
// stored defaults for t, or the built-in ones when none are stored.
func (a *App) NewEntryFromDefaults(ctx context.Context, t sweep.Type) (sweep.Entry, error) {
	params, err := a.defaultParams(ctx, t)
	if err != nil {
		return sweep.Entry{}, err
	}
	e := codegen.BuildEntry("", "", params, a.defaultDatabase())
	a.Queue.AddOrReplace(e)
	stored, _ := a.Queue.Get(e.ID)
	return stored, nil
}

func (a *App) defaultParams(ctx context.Context, t sweep.Type) (sweep.Params, error) {
	if a.Defaults != nil {
		params, ok, err := a.Defaults.Load(ctx, t)
		if err != nil {
			slog.Warn("load form defaults failed", "sweep_type", t, "error", err)
		} else if ok {
			return params, nil
		}
	}
	return sweep.NewParams(t)
}

func (a *App) defaultDatabase() *sweep.Database {
	db := a.database()
	if strings.TrimSpace(db.Path) == "" {
		return nil
	}
	return &sweep.Database{Database: db.Path, Experiment: db.Experiment, Sample: db.Sample}
}

// SaveDefaults stores the params of the queued entry id as the defaults
// for its sweep type. The queue itself is untouched.
func (a *App) SaveDefaults(ctx context.Context, id string) error {
	if a.Defaults == nil {
		return errors.Wrap(a.defaultsErr, errors.CodeUnavailable, "form defaults store disabled")
	}
	e, err := a.queued(id)
	if err != nil {
		return err
	}
	if e.Params == nil {
		return errors.AddContext(errors.New(errors.CodeValidationError, "sweep has no form params"), errors.CtxEntryID, id)
	}
	return a.Defaults.Save(ctx, e.Params)
}
