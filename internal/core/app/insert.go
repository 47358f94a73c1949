package app

import (
	"context"
	"log/slog"

	"sweepq/internal/core/errors"
	"sweepq/internal/data/notebook"
	"sweepq/internal/engine/export"
	"sweepq/internal/shared/observability"
)

// InsertResult describes what an insertion did. Notice is set when nothing
// was inserted.
type InsertResult struct {
	Inserted bool
	Notice   string
}

// InsertQueue renders the queue and hands it to host. A missing notebook
// is reported through the result, never as an error. The export is only
// counted once the code has landed.
func (a *App) InsertQueue(ctx context.Context, host notebook.Inserter) (InsertResult, error) {
	return a.insert(ctx, host, "queue", export.ExportSweepQueue(a.Queue.Entries()))
}

// InsertEntry renders one queued entry and hands it to host.
func (a *App) InsertEntry(ctx context.Context, host notebook.Inserter, id string, includeDatabaseAndStart bool) (InsertResult, error) {
	e, err := a.queued(id)
	if err != nil {
		return InsertResult{}, err
	}
	return a.insert(ctx, host, "single", export.ExportSingleEntry(e, includeDatabaseAndStart))
}

func (a *App) insert(ctx context.Context, host notebook.Inserter, kind, code string) (InsertResult, error) {
	if host == nil {
		return a.unavailable(notebook.NoActiveNotebook), nil
	}
	if err := host.InsertCode(ctx, code); err != nil {
		if errors.IsCode(err, errors.CodeUnavailable) {
			return a.unavailable(errors.Message(err)), nil
		}
		observability.NotebookInsertsTotal.WithLabelValues("failed").Inc()
		return InsertResult{}, err
	}
	observability.NotebookInsertsTotal.WithLabelValues("inserted").Inc()
	observability.ExportsTotal.WithLabelValues(kind).Inc()
	return InsertResult{Inserted: true}, nil
}

func (a *App) unavailable(notice string) InsertResult {
	observability.NotebookInsertsTotal.WithLabelValues("unavailable").Inc()
	slog.Warn(notice)
	return InsertResult{Notice: notice}
}
