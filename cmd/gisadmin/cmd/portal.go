package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/portal"
	"github.com/dbsmedya/gisadmin/internal/report"
)

var (
	portalFilter string
	portalTypes  []string
	retagMap     map[string]string
	retagApply   bool
)

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Query and maintain portal content items",
	Long: `Portal commands search the content of a web portal configured under
portal: in the configuration file.

A portal search returns at most 500 items. When a search hits that limit the
items are collected again per owner, and then per item type, to reach the rest.`,
}

var portalItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "List portal items",
	Long: `List portal items, optionally filtered by item type.

Example:
  gisadmin portal items
  gisadmin portal items --filter include --type "Feature Service" --type "Web Map"
  gisadmin portal items --filter exclude --type "Code Attachment"`,
	RunE: runPortalItems,
}

var portalTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show how often each tag is used",
	RunE:  runPortalTags,
}

var portalRetagCmd = &cobra.Command{
	Use:   "retag",
	Short: "Replace tags across portal items",
	Long: `Retag rewrites item tags using a mapping of old tag to new tag. A tag mapped
to an empty value is removed. Without --apply only the plan is printed.

Example:
  gisadmin portal retag --map roads=Transportation --map draft=
  gisadmin portal retag --map roads=Transportation --apply`,
	RunE: runPortalRetag,
}

func init() {
	for _, c := range []*cobra.Command{portalItemsCmd, portalTagsCmd, portalRetagCmd} {
		c.Flags().StringVar(&portalFilter, "filter", portal.FilterNone, "Item type filter: include or exclude")
		c.Flags().StringSliceVar(&portalTypes, "type", nil, "Item type for --filter (repeatable)")
	}
	portalRetagCmd.Flags().StringToStringVar(&retagMap, "map", nil, "Tag mapping old=new (repeatable)")
	portalRetagCmd.Flags().BoolVar(&retagApply, "apply", false, "Update the items instead of printing the plan")
	portalRetagCmd.MarkFlagRequired("map")

	portalCmd.AddCommand(portalItemsCmd)
	portalCmd.AddCommand(portalTagsCmd)
	portalCmd.AddCommand(portalRetagCmd)
	rootCmd.AddCommand(portalCmd)
}

// runPortalCommand validates the portal settings and runs fn with a client,
// a searcher and the command logger.
func runPortalCommand(cmd *cobra.Command, fn func(ctx context.Context, client portal.Client, s *portal.Searcher, log *logger.Logger) error) error {
	return runCommand(cmd, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		if err := cfg.ValidatePortal(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		client, err := portal.NewRESTClient(cfg.Portal, log)
		if err != nil {
			return err
		}
		searcher, err := portal.NewSearcher(client, cfg.Portal.MaxItems, cfg.Portal.MaxUsers, log)
		if err != nil {
			return err
		}
		return fn(ctx, client, searcher, log)
	})
}

func runPortalItems(cmd *cobra.Command, args []string) error {
	return runPortalCommand(cmd, func(ctx context.Context, _ portal.Client, s *portal.Searcher, _ *logger.Logger) error {
		items, err := s.QueryItems(ctx, portalFilter, portalTypes)
		if err != nil {
			return err
		}

		tbl := report.NewTable("ID", "Title", "Type", "Owner")
		for _, item := range items {
			tbl.AddRow(item.ID, item.Title, item.Type, item.Owner)
		}

		out := cmd.OutOrStdout()
		if err := tbl.Render(out); err != nil {
			return err
		}
		report.Field(out, "Items", len(items))
		return nil
	})
}

func runPortalTags(cmd *cobra.Command, args []string) error {
	return runPortalCommand(cmd, func(ctx context.Context, _ portal.Client, s *portal.Searcher, _ *logger.Logger) error {
		items, err := s.QueryItems(ctx, portalFilter, portalTypes)
		if err != nil {
			return err
		}

		counts := portal.TagHistogram(items)
		portal.SortByCount(counts)

		tbl := report.NewTable("Tag", "Count")
		for _, tc := range counts {
			tbl.AddRow(tc.Tag, formatInt(int64(tc.Count)))
		}

		out := cmd.OutOrStdout()
		if err := tbl.Render(out); err != nil {
			return err
		}
		report.Field(out, "Items", len(items))
		report.Field(out, "Tags", len(counts))
		return nil
	})
}

func runPortalRetag(cmd *cobra.Command, args []string) error {
	return runPortalCommand(cmd, func(ctx context.Context, client portal.Client, s *portal.Searcher, log *logger.Logger) error {
		items, err := s.QueryItems(ctx, portalFilter, portalTypes)
		if err != nil {
			return err
		}

		plan := portal.PlanTagUpdates(items, retagMap)

		tbl := report.NewTable("ID", "Title", "Old Tags", "New Tags")
		changed := 0
		for _, u := range plan {
			if !u.Changed() {
				continue
			}
			changed++
			tbl.AddRow(u.Item.ID, u.Item.Title, strings.Join(u.OldTags, ", "), strings.Join(u.NewTags, ", "))
		}

		out := cmd.OutOrStdout()
		if changed == 0 {
			report.Warn(out, "no items use the mapped tags")
			return nil
		}
		if err := tbl.Render(out); err != nil {
			return err
		}

		if !retagApply {
			report.Warn(out, "%d item(s) would be retagged (run with --apply to update)", changed)
			return nil
		}

		updated, err := portal.ApplyTagUpdates(ctx, client, plan, log)
		if err != nil {
			report.Fail(out, "%d of %d item(s) retagged", updated, changed)
			return err
		}
		report.OK(out, "%d item(s) retagged", updated)
		return nil
	})
}
