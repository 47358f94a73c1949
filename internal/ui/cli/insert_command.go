package cli

import (
	"fmt"
	"strings"

	"sweepq/internal/core/app"
	"sweepq/internal/core/config"

	"github.com/spf13/cobra"
)

func newInsertCommand(ctx *commandContext) *cobra.Command {
	var notebookPath string
	var after int
	var entryID string
	var includeDatabaseAndStart bool

	cmd := &cobra.Command{
		Use:   "insert <plan.toml>",
		Short: "Insert the queue script into a notebook as a new code cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPlan(args[0], func(a *app.App) error {
				host := a.NotebookHost()
				if strings.TrimSpace(notebookPath) != "" {
					host.Path = config.ResolveRelative(mustGetwd(), notebookPath)
				}
				if cmd.Flags().Changed("after") {
					host.After = after
				}

				var (
					res app.InsertResult
					err error
				)
				if entryID != "" {
					res, err = a.InsertEntry(cmd.Context(), host, entryID, includeDatabaseAndStart)
				} else {
					res, err = a.InsertQueue(cmd.Context(), host)
				}
				if err != nil {
					return err
				}
				if !res.Inserted {
					fmt.Fprintln(cmd.ErrOrStderr(), res.Notice)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted into %s\n", host.Path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&notebookPath, "notebook", "n", "", "Notebook to insert into (default [notebook] path)")
	cmd.Flags().IntVar(&after, "after", -1, "Insert after this cell index; -1 appends")
	cmd.Flags().StringVar(&entryID, "entry", "", "Insert only the entry with this id")
	cmd.Flags().BoolVar(&includeDatabaseAndStart, "start", false, "With --entry, include database initialisation and start code")
	return cmd
}
