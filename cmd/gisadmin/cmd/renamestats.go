package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/fields"
	"github.com/dbsmedya/gisadmin/internal/report"
)

var (
	renameTable   string
	renameFields  []string
	renameNoAlias bool
	renameDryRun  bool
)

var renameStatsCmd = &cobra.Command{
	Use:   "rename-stats",
	Short: "Strip statistics prefixes from field names",
	Long: `Rename-stats renames fields produced by summary statistics and dissolve
tools back to their source names, e.g. SUM_Pop -> Pop and MEAN_Income -> Income.

Recognised prefixes: SUM_ MEAN_ MIN_ MAX_ RANGE_ STD_ COUNT_ FIRST_ LAST_
MEDIAN_ VARIANCE_ UNIQUE_ CONCATENATE_

The alias of each renamed field is set to its new name unless --no-alias is
given. Nothing is renamed when a new name would collide with another field.

Example:
  gisadmin rename-stats --table tracts_dissolve
  gisadmin rename-stats --table tracts_dissolve --fields SUM_Pop,MAX_Area --dry-run`,
	RunE: runRenameStats,
}

func init() {
	renameStatsCmd.Flags().StringVarP(&renameTable, "table", "t", "", "Table (required)")
	renameStatsCmd.Flags().StringSliceVarP(&renameFields, "fields", "f", nil, "Only rename these fields (default: all)")
	renameStatsCmd.Flags().BoolVar(&renameNoAlias, "no-alias", false, "Leave field aliases unchanged")
	renameStatsCmd.Flags().BoolVar(&renameDryRun, "dry-run", false, "Show the renames without applying them")
	renameStatsCmd.MarkFlagRequired("table")
	addEditFlags(renameStatsCmd)

	rootCmd.AddCommand(renameStatsCmd)
}

func runRenameStats(cmd *cobra.Command, args []string) error {
	return runWorkspaceCommand(cmd, func(ctx context.Context, s *workspaceSession) error {
		t := s.table(renameTable)
		opts := fields.Options{
			Fields:   renameFields,
			SetAlias: !renameNoAlias,
			DryRun:   renameDryRun,
		}

		renamer, err := fields.NewRenamer(s.ws, s.log)
		if err != nil {
			return err
		}

		return s.withEditLock(ctx, forceEdit, func() error {
			if opts.SetAlias && !opts.DryRun {
				if err := s.ws.EnsureAliasTable(ctx); err != nil {
					return err
				}
			}

			renames, err := renamer.ResetStatsFields(ctx, t, opts)

			out := cmd.OutOrStdout()
			tbl := report.NewTable("Field", "New Name", "Alias")
			for _, rn := range renames {
				tbl.AddRow(rn.Old, rn.New, rn.Alias)
			}
			if tbl.Len() > 0 {
				_ = tbl.Render(out)
			}
			if err != nil {
				return err
			}

			switch {
			case len(renames) == 0:
				report.Warn(out, "%s: no statistics fields to rename", t)
			case opts.DryRun:
				report.Warn(out, "%s: %d field(s) would be renamed (dry run)", t, len(renames))
			default:
				report.OK(out, "%s: %d field(s) renamed", t, len(renames))
			}
			return nil
		})
	})
}
