package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"sweepq/internal/core/app"
	"sweepq/internal/core/config"

	"github.com/spf13/cobra"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [plan.toml]",
		Short: "Re-export the plan and rescan the notebook whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := ""
			if len(args) == 1 {
				planPath = args[0]
			}
			return ctx.withPlan(planPath, func(a *app.App) error {
				runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				stop := startObservability(runCtx, a)
				defer stop()

				if *ctx.configFlag != "" {
					watchConfig(runCtx, *ctx.configFlag, a)
				}

				out := cmd.OutOrStdout()
				return a.Watch(runCtx, planPath, func(ev app.WatchEvent) {
					printWatchEvent(out, ev)
				})
			})
		},
	}
}

// watchConfig applies reloaded [database] and [export] settings to a.
// Other sections need a restart.
func watchConfig(ctx context.Context, path string, a *app.App) {
	w := config.NewWatcher(path, func(cfg *config.Config) {
		if err := a.ApplyConfig(cfg); err != nil {
			slog.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		slog.Info("config updated", "path", path)
	})
	if err := w.Start(ctx); err != nil {
		slog.Debug("config watcher not started", "path", path, "error", err)
		return
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
}

func printWatchEvent(out io.Writer, ev app.WatchEvent) {
	if ev.Err != nil {
		fmt.Fprintf(out, "%s: %v\n", ev.Path, ev.Err)
		return
	}
	switch ev.Kind {
	case app.WatchPlan:
		if ev.Output != "" {
			fmt.Fprintf(out, "%s: %d sweeps exported to %s\n", ev.Path, ev.Entries, ev.Output)
		} else {
			fmt.Fprintf(out, "%s: %d sweeps loaded\n", ev.Path, ev.Entries)
		}
	case app.WatchNotebook:
		total := 0
		for _, c := range ev.Cells {
			total += len(c.Markers)
		}
		fmt.Fprintf(out, "%s: %d sweeps in %d cells\n", ev.Path, total, len(ev.Cells))
	}
}
