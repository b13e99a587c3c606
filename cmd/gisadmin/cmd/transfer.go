package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/report"
	"github.com/dbsmedya/gisadmin/internal/transfer"
)

// forceEdit skips the workspace edit lock on mutating commands.
var forceEdit bool

var (
	transferFrom       string
	transferFromSelect string
	transferTo         string
	transferToSelect   string
	transferFields     []string
)

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Copy attributes from one selected record to selected records",
	Long: `Transfer copies field values from the single selected record of the input
table to every selected record of the output table.

Fields are given as input:output pairs; a bare name uses the same field in
both tables. Nothing is written unless exactly one input record is selected,
between 1 and --max-selection output records are selected, and the field
lists pair up.

Selections are made with --from-select and --to-select and only exist for the
duration of the command.

Example:
  gisadmin transfer --from tract_stats --from-select TRACT=12 \
    --to blocks --to-select TRACT=12 --fields SUM_Pop:Pop,SUM_Area:Area --max-selection 50`,
	RunE: runTransfer,
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&forceEdit, "force", false,
		"Run even if the workspace edit lock cannot be acquired (use with caution)")
}

func init() {
	transferCmd.Flags().StringVar(&transferFrom, "from", "", "Input table (required)")
	transferCmd.Flags().StringVar(&transferFromSelect, "from-select", "", "Input selection: field=value[,value...] or all")
	transferCmd.Flags().StringVar(&transferTo, "to", "", "Output table (required)")
	transferCmd.Flags().StringVar(&transferToSelect, "to-select", "", "Output selection: field=value[,value...] or all")
	transferCmd.Flags().StringSliceVarP(&transferFields, "fields", "f", nil, "Fields as input[:output] (required)")
	transferCmd.MarkFlagRequired("from")
	transferCmd.MarkFlagRequired("to")
	transferCmd.MarkFlagRequired("fields")
	addEditFlags(transferCmd)

	rootCmd.AddCommand(transferCmd)
}

func runTransfer(cmd *cobra.Command, args []string) error {
	mapping := transfer.ParseFieldMapping(transferFields)

	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		src := s.table(transferFrom)
		dst := s.table(transferTo)

		opts := transfer.DefaultTransferOptions()
		opts.OutputFields = mapping.Output
		opts.MaxSelection = int64(s.cfg.Transfer.MaxSelection)
		opts.ResetSelection = s.cfg.Transfer.ResetSelection

		return s.withEditLock(ctx, forceEdit, func() error {
			if err := s.selectWhere(ctx, src, transferFromSelect); err != nil {
				return err
			}
			if err := s.selectWhere(ctx, dst, transferToSelect); err != nil {
				return err
			}

			result, err := s.engine.TransferAttributes(ctx, src, dst, mapping.Input, opts)
			if result != nil {
				printTransferResult(cmd, result)
			}
			return err
		})
	})
}

func printTransferResult(cmd *cobra.Command, result *transfer.TransferResult) {
	out := cmd.OutOrStdout()

	tbl := report.NewTable("Input", "Output", "Value", "Records")
	for _, f := range result.Fields {
		tbl.AddRow(f.Input, f.Output, report.Value(f.Value), formatInt(f.Records))
	}

	report.OK(out, "%s -> %s: %d field(s) copied to %d record(s)",
		result.Source, result.Destination, len(result.Fields), result.Selected)
	if tbl.Len() > 0 {
		_ = tbl.Render(out)
	}
}
