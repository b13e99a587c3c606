package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and connectivity",
	Long: `Validate checks the configuration file, connects to the workspace database
and verifies that every configured table exists. The portal settings are
checked as well when a portal url is configured.

Example:
  gisadmin validate --config gisadmin.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	return runCommand(cmd, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		s, err := openWorkspace(ctx, cfg, log)
		if err != nil {
			report.Fail(out, "workspace: %v", err)
			return err
		}
		defer s.Close()
		report.OK(out, "configuration is valid")

		if err := s.db.Ping(ctx); err != nil {
			report.Fail(out, "workspace: %v", err)
			return err
		}
		report.OK(out, "connected to workspace %s", s.ws.Schema())

		tables := make([]string, 0, len(cfg.Tables))
		for _, name := range cfg.ListTables() {
			tables = append(tables, s.table(name).Name)
		}
		if len(tables) == 0 {
			report.Warn(out, "no tables configured")
		} else if err := s.ws.CheckTablesExist(ctx, tables); err != nil {
			report.Fail(out, "%v", err)
			return err
		} else {
			report.OK(out, "%d configured table(s) found", len(tables))
		}

		if cfg.Portal.URL != "" {
			if err := cfg.ValidatePortal(); err != nil {
				report.Fail(out, "portal: %v", err)
				return fmt.Errorf("invalid configuration: %w", err)
			}
			report.OK(out, "portal settings are valid")
		}
		return nil
	})
}
