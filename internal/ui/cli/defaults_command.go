package cli

import (
	"encoding/json"
	"fmt"

	"sweepq/internal/core/app"
	"sweepq/internal/core/errors"
	"sweepq/internal/sweep"

	"github.com/spf13/cobra"
)

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	defaultsCmd := &cobra.Command{
		Use:   "defaults",
		Short: "Inspect and manage stored per-type form defaults",
	}

	defaultsCmd.AddCommand(newDefaultsListCommand(ctx))
	defaultsCmd.AddCommand(newDefaultsShowCommand(ctx))
	defaultsCmd.AddCommand(newDefaultsImportCommand(ctx))
	defaultsCmd.AddCommand(newDefaultsResetCommand(ctx))

	return defaultsCmd
}

func withDefaults(ctx *commandContext, fn func(*app.App) error) error {
	return ctx.withPlan("", func(a *app.App) error {
		if a.Defaults == nil {
			return errors.New(errors.CodeUnavailable, "form defaults store disabled")
		}
		return fn(a)
	})
}

func newDefaultsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sweep types with stored defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDefaults(ctx, func(a *app.App) error {
				records, err := a.Defaults.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No defaults stored")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{
						r.SweepType.String(),
						r.SweepType.Label(),
						r.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Type", "Sweep", "Updated"}, rows, nil))
				return nil
			})
		},
	}
}

func newDefaultsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type>",
		Short: "Print the stored defaults for a sweep type as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := sweep.ParseType(args[0])
			if err != nil {
				return err
			}
			return withDefaults(ctx, func(a *app.App) error {
				params, ok, err := a.Defaults.Load(cmd.Context(), t)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No defaults stored for %s\n", t.Label())
					return nil
				}
				data, err := json.MarshalIndent(params, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newDefaultsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.toml>",
		Short: "Store each plan entry's params as the defaults for its type",
		Long:  "Store each plan entry's params as the defaults for its type. Later entries of the same type win.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDefaults(ctx, func(a *app.App) error {
				if _, err := a.LoadPlan(args[0], true); err != nil {
					return err
				}
				saved := 0
				for _, e := range a.Queue.Entries() {
					if e.Params == nil {
						continue
					}
					if err := a.SaveDefaults(cmd.Context(), e.ID); err != nil {
						return err
					}
					saved++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored defaults from %d entries\n", saved)
				return nil
			})
		},
	}
}

func newDefaultsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [type...]",
		Short: "Forget stored defaults (all types when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			types := sweep.Types()
			if len(args) > 0 {
				types = types[:0:0]
				for _, arg := range args {
					t, err := sweep.ParseType(arg)
					if err != nil {
						return err
					}
					types = append(types, t)
				}
			}
			return withDefaults(ctx, func(a *app.App) error {
				for _, t := range types {
					if err := a.Defaults.Delete(cmd.Context(), t); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset defaults for %d sweep types\n", len(types))
				return nil
			})
		},
	}
}
