package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/report"
	"github.com/dbsmedya/gisadmin/internal/transfer"
)

var (
	countTable  string
	countSelect string
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count the selected records of a table",
	Long: `Count selects records with --select and reports how many are selected.
A count of -1 means every record of the table is selected.

Example:
  gisadmin count --table parcels --select Zone=R1,R2
  gisadmin count --table parcels --select all`,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVarP(&countTable, "table", "t", "", "Table name or configured alias (required)")
	countCmd.Flags().StringVarP(&countSelect, "select", "s", "", "Selection: field=value[,value...] or all")
	countCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, args []string) error {
	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		t := s.table(countTable)
		if err := s.selectWhere(ctx, t, countSelect); err != nil {
			return err
		}

		count, err := s.engine.SelectionCount(ctx, t)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch count {
		case 0:
			report.Warn(out, "%s: no records selected", t)
		case transfer.SelectAll:
			report.OK(out, "%s: all records selected", t)
		default:
			report.OK(out, "%s: %d records selected", t, count)
		}
		report.Field(out, "Count", count)
		return nil
	})
}
