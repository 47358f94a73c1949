package cli

import (
	"context"
	"log/slog"
	"time"

	"sweepq/internal/core/app"
	"sweepq/internal/shared/observability"
	"sweepq/internal/ui/tui"

	"github.com/spf13/cobra"
)

func newUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "ui [plan.toml]",
		Short:       "Edit the queue interactively",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"logToFile": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			planPath := ""
			if len(args) == 1 {
				planPath = args[0]
			}
			return ctx.withPlan(planPath, func(a *app.App) error {
				stop := startObservability(cmd.Context(), a)
				defer stop()
				return tui.Run(a)
			})
		},
	}
}

// startObservability serves /metrics and /health when enabled and returns
// the shutdown func.
func startObservability(ctx context.Context, a *app.App) func() {
	if !a.Config.Observability.Enabled {
		return func() {}
	}
	server := observability.NewServer(a.Config.Observability.Address, a.Health)
	if err := server.Start(ctx); err != nil {
		slog.Warn("observability server not started", "error", err)
		return func() {}
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			slog.Warn("observability server shutdown failed", "error", err)
		}
	}
}
