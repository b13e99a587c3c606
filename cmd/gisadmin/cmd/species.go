package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/report"
	"github.com/dbsmedya/gisadmin/internal/species"
)

var (
	speciesUnits      []string
	speciesCategories []string
	speciesListType   string
	speciesOutput     string
)

var speciesCmd = &cobra.Command{
	Use:   "species",
	Short: "Download park unit species lists",
	Long: `Species downloads species lists from the NPSpecies service and writes the
combined records as JSON.

Without --unit every park unit code is looked up from the unit list service
first. Units the service has no list for are reported and skipped.

Example:
  gisadmin species --unit YELL --unit GRTE --category Mammal --output species.json
  gisadmin species --list-type fulllist`,
	RunE: runSpecies,
}

func init() {
	speciesCmd.Flags().StringSliceVarP(&speciesUnits, "unit", "u", nil, "Park unit code (repeatable, default: all units)")
	speciesCmd.Flags().StringSliceVar(&speciesCategories, "category", nil, "Species category (repeatable, default: all)")
	speciesCmd.Flags().StringVar(&speciesListType, "list-type", "", "List type: checklist, detaillist or fulllist (default from config)")
	speciesCmd.Flags().StringVarP(&speciesOutput, "output", "o", "", "Write JSON to this file instead of stdout")

	rootCmd.AddCommand(speciesCmd)
}

func runSpecies(cmd *cobra.Command, args []string) error {
	return runCommand(cmd, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		client, err := species.NewClient(cfg.Species, log)
		if err != nil {
			return err
		}

		records, results, err := client.Fetch(ctx, species.FetchOptions{
			Units:      speciesUnits,
			Categories: speciesCategories,
			ListType:   speciesListType,
		})
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode species records: %w", err)
		}

		if speciesOutput == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.WriteFile(speciesOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", speciesOutput, err)
		}

		out := cmd.OutOrStdout()
		skipped := 0
		for _, r := range results {
			if r.Skipped() {
				skipped++
				report.Warn(out, "%s: no species list (HTTP %d)", r.Unit, r.Status)
			}
		}
		report.OK(out, "%d record(s) from %d unit(s) written to %s", len(records), len(results)-skipped, speciesOutput)
		return nil
	})
}
