package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/report"
	"github.com/dbsmedya/gisadmin/internal/transfer"
)

var (
	replaceTable  string
	replaceSelect string
	replaceFields []string
	replaceValue  string
)

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace or clear attributes of selected records",
	Long: `Replace sets the listed fields of every selected record to --value, or to
NULL when --value is not given.

Nothing is written unless between 1 and --max-selection records are selected.
The --select selection only exists for the duration of the command.

Example:
  gisadmin replace --table sites --select Status=Retired --fields Status --max-selection 20
  gisadmin replace --table sites --select OBJECTID=7 --fields Owner,Notes --value Unknown`,
	RunE: runReplace,
}

func init() {
	replaceCmd.Flags().StringVarP(&replaceTable, "table", "t", "", "Table (required)")
	replaceCmd.Flags().StringVarP(&replaceSelect, "select", "s", "", "Selection: field=value[,value...] or all")
	replaceCmd.Flags().StringSliceVarP(&replaceFields, "fields", "f", nil, "Fields to replace (required)")
	replaceCmd.Flags().StringVar(&replaceValue, "value", "", "Replacement value (default: NULL)")
	replaceCmd.MarkFlagRequired("table")
	replaceCmd.MarkFlagRequired("fields")
	addEditFlags(replaceCmd)

	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, args []string) error {
	opts := transfer.DefaultReplaceOptions()
	if cmd.Flags().Changed("value") {
		opts.Value = replaceValue
	}

	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		t := s.table(replaceTable)
		opts.MaxSelection = int64(s.cfg.Transfer.MaxSelection)
		opts.ResetSelection = s.cfg.Transfer.ResetSelection

		return s.withEditLock(ctx, forceEdit, func() error {
			if err := s.selectWhere(ctx, t, replaceSelect); err != nil {
				return err
			}

			result, err := s.engine.ReplaceAttributes(ctx, t, replaceFields, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report.OK(out, "%s: %d record(s) updated", result.Table, result.Records)
			report.Field(out, "Fields", strings.Join(result.Fields, ", "))
			report.Field(out, "Value", report.Value(result.Value))
			return nil
		})
	})
}
