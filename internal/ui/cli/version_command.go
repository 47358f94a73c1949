package cli

import (
	"fmt"

	"sweepq/internal/data/plan"
	"sweepq/internal/sweep"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the sweepq version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sweepq v%s\n", versionString)
			return nil
		},
	}
}

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "types",
		Short:       "List the sweep types a plan may use",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			names := plan.Types()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				t, err := sweep.ParseType(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, t.Label()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Type", "Sweep"}, rows, nil))
			return nil
		},
	}
}
