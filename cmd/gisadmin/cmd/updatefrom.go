package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/transfer"
)

var (
	updateFromTable  string
	updateFromSelect string
	updateToTable    string
	updateToSelect   string
	updateFields     []string
	updateMethod     string
)

var updateFromCmd = &cobra.Command{
	Use:   "update-from",
	Short: "Update records of one table from another",
	Long: `Update-from copies attributes from the input table to the output table
using a relationship method:

  1:m  one selected input record to every selected output record, with no
       limit on the output selection and selections kept afterwards
  1:1  pair records in order (not supported yet; only the selection
       counts are checked)

Example:
  gisadmin update-from --from tract_stats --from-select TRACT=12 \
    --to blocks --to-select TRACT=12 --fields SUM_Pop:Pop --method 1:m`,
	RunE: runUpdateFrom,
}

func init() {
	updateFromCmd.Flags().StringVar(&updateFromTable, "from", "", "Input table (required)")
	updateFromCmd.Flags().StringVar(&updateFromSelect, "from-select", "", "Input selection: field=value[,value...] or all")
	updateFromCmd.Flags().StringVar(&updateToTable, "to", "", "Output table (required)")
	updateFromCmd.Flags().StringVar(&updateToSelect, "to-select", "", "Output selection: field=value[,value...] or all")
	updateFromCmd.Flags().StringSliceVarP(&updateFields, "fields", "f", nil, "Fields as input[:output] (required)")
	updateFromCmd.Flags().StringVarP(&updateMethod, "method", "m", transfer.MethodOneToMany, "Relationship method: 1:1 or 1:m")
	updateFromCmd.MarkFlagRequired("from")
	updateFromCmd.MarkFlagRequired("to")
	updateFromCmd.MarkFlagRequired("fields")
	addEditFlags(updateFromCmd)

	rootCmd.AddCommand(updateFromCmd)
}

func runUpdateFrom(cmd *cobra.Command, args []string) error {
	mapping := transfer.ParseFieldMapping(updateFields)

	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		src := s.table(updateFromTable)
		dst := s.table(updateToTable)

		return s.withEditLock(ctx, forceEdit, func() error {
			if err := s.selectWhere(ctx, src, updateFromSelect); err != nil {
				return err
			}
			if err := s.selectWhere(ctx, dst, updateToSelect); err != nil {
				return err
			}

			result, err := s.engine.UpdateRecordsFrom(ctx, src, dst, mapping, updateMethod)
			if result != nil {
				printTransferResult(cmd, result)
			}
			return err
		})
	})
}
