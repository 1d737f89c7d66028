package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kachef/internal/chef"
	"kachef/internal/metadata"
	"kachef/internal/report"
)

func newMetadataCommand(ctx *commandContext) *cobra.Command {
	metadataCmd := &cobra.Command{
		Use:   "metadata",
		Short: "Generate or inspect the metadata map",
	}
	metadataCmd.AddCommand(newMetadataGenerateCommand(ctx))
	metadataCmd.AddCommand(newMetadataShowCommand(ctx))
	return metadataCmd
}

func newMetadataGenerateCommand(ctx *commandContext) *cobra.Command {
	var tracking bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the reference tree and write the slug metadata map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg = cfg.WithRun(cfg.Run.ReferenceLanguage, "")
			if cmd.Flags().Changed("tracking") {
				cfg.Metadata.Tracking = tracking
			}
			opts := ctx.options()
			opts.Mode = metadata.ModeGenerate

			res, runErr := chef.Run(cmd.Context(), cfg, opts)
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, strings.Join(renderRunSummary(res, shouldColorize(out)), "\n"))
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&tracking, "tracking", false, "Also write the per-slug tracking file")
	return cmd
}

func newMetadataShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [slug...]",
		Short: "Show metadata map entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			m, err := metadata.Load(cfg.Paths.MetadataPath)
			if err != nil {
				return err
			}

			slugs := args
			if len(slugs) == 0 {
				slugs = m.Slugs()
			}
			selected := make(metadata.Map, len(slugs))
			for _, slug := range slugs {
				entry, ok := m[slug]
				if !ok {
					return fmt.Errorf("slug %q is not in %s", slug, cfg.Paths.MetadataPath)
				}
				selected[slug] = entry
			}
			if asJSON {
				return writeJSON(cmd, selected)
			}

			rows := make([][]string, 0, len(slugs))
			for _, slug := range slugs {
				entry := selected[slug]
				rows = append(rows, []string{
					slug,
					strings.Join(entry.GradeLevels, ", "),
					strings.Join(entry.Categories, "; "),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Table(
				[]string{"Slug", "Grade levels", "Categories"},
				rows,
				[]report.Align{report.AlignLeft, report.AlignLeft, report.AlignLeft},
			))
			fmt.Fprintf(out, "%d of %d slugs\n", len(slugs), len(m))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}
