package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/report"
)

var (
	selectFirstTable   string
	selectFirstIDField string
	selectFirstSelect  string
)

var selectFirstCmd = &cobra.Command{
	Use:   "select-first",
	Short: "Select the first record of a table",
	Long: `Select-first reads the identifier of the first record the workspace returns
(within --select, when given) and selects the record with that identifier.
The identifier field must hold unique values.

Example:
  gisadmin select-first --table parcels
  gisadmin select-first --table parcels --id-field PARCEL_ID --select Zone=R1`,
	RunE: runSelectFirst,
}

func init() {
	selectFirstCmd.Flags().StringVarP(&selectFirstTable, "table", "t", "", "Table name or configured alias (required)")
	selectFirstCmd.Flags().StringVar(&selectFirstIDField, "id-field", "", "Unique identifier field (default: the table's id field)")
	selectFirstCmd.Flags().StringVarP(&selectFirstSelect, "select", "s", "", "Narrow the cursor first: field=value[,value...] or all")
	selectFirstCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(selectFirstCmd)
}

func runSelectFirst(cmd *cobra.Command, args []string) error {
	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		t := s.table(selectFirstTable)
		if err := s.selectWhere(ctx, t, selectFirstSelect); err != nil {
			return err
		}

		id, err := s.engine.SelectFirstRecord(ctx, t, selectFirstIDField)
		if err != nil {
			return err
		}
		count, err := s.engine.SelectionCount(ctx, t)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		report.OK(out, "%s: first record selected", t)
		report.Field(out, "Value", report.Value(id))
		report.Field(out, "Selected", count)
		return nil
	})
}
