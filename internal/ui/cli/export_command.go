package cli

import (
	"fmt"
	"strings"

	"sweepq/internal/core/app"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <plan.toml>",
		Short: "Render a queue plan as a runnable SweepQueue script",
		Long: "Render a queue plan as a runnable SweepQueue script.\n\n" +
			"The script goes to stdout unless --output (or [export] output) names a file; use - to force stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPlan(args[0], func(a *app.App) error {
				target := strings.TrimSpace(output)
				if target == "" {
					target = a.Paths().ExportOutput
				}
				if target == "" || target == "-" {
					fmt.Fprintln(cmd.OutOrStdout(), a.ExportQueue())
					return nil
				}
				written, err := a.WriteQueueScript(target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sweeps to %s\n", a.Queue.Len(), written)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the script to this file")
	return cmd
}

func newEntryCommand(ctx *commandContext) *cobra.Command {
	var includeDatabaseAndStart bool

	cmd := &cobra.Command{
		Use:   "entry <plan.toml> <id>",
		Short: "Render one plan entry on its own, outside the queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPlan(args[0], func(a *app.App) error {
				code, err := a.ExportEntry(args[1], includeDatabaseAndStart)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), code)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&includeDatabaseAndStart, "start", false, "Include database initialisation and start code")
	return cmd
}
