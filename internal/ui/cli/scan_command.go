package cli

import (
	"fmt"
	"os"
	"strconv"

	"sweepq/internal/core/app"
	"sweepq/internal/data/notebook"
	"sweepq/internal/engine/parser"

	"github.com/spf13/cobra"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <notebook.ipynb|dir>",
		Short: "List the MeasureIt sweeps constructed in notebook cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPlan("", func(a *app.App) error {
				paths, err := scanTargets(a, args[0])
				if err != nil {
					return err
				}

				var rows [][]string
				for _, path := range paths {
					cells, err := a.ScanNotebook(path)
					if err != nil {
						return err
					}
					rows = append(rows, scanRows(path, cells)...)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sweeps found")
					return nil
				}
				out := renderTable(
					[]string{"Notebook", "Cell", "Line", "Sweep", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func scanTargets(a *app.App, target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	return notebook.Discover(target, a.Config.Scan.ExcludeDirs, a.Config.Scan.ExcludeFiles)
}

func scanRows(path string, cells []parser.CellMarkers) [][]string {
	var rows [][]string
	for _, cell := range cells {
		for _, m := range cell.Markers {
			rows = append(rows, []string{
				path,
				strconv.Itoa(cell.Index),
				strconv.Itoa(m.Line),
				m.Heading(),
				markerStatus(m),
			})
		}
	}
	return rows
}

func markerStatus(m parser.Marker) string {
	switch {
	case m.Queued:
		return "queued"
	case m.Started:
		return "started"
	default:
		return "built"
	}
}
