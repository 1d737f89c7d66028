package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kachef/internal/chef"
	"kachef/internal/language"
	"kachef/internal/metadata"
	"kachef/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect snapshots and built trees",
	}
	reportCmd.AddCommand(newReportRawCommand(ctx))
	reportCmd.AddCommand(newReportTreeCommand(ctx))
	return reportCmd
}

func newReportRawCommand(ctx *commandContext) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Summarize the raw snapshot rows for a language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig(cmd, lang, "")
			if err != nil {
				return err
			}
			store, err := chef.LoadSnapshot(cmd.Context(), cfg, ctx.options())
			if err != nil {
				return err
			}
			raw := report.Summarize(language.Normalize(cfg.Run.Language), store)
			fmt.Fprint(cmd.OutOrStdout(), raw.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to summarize (defaults to run.language)")
	return cmd
}

func newReportTreeCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var variant string
	var maxLevel int
	var variantOnly bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Build a tree without writing it and print its outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig(cmd, lang, variant)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-level") {
				maxLevel = cfg.Report.MaxLevel
			}
			opts := ctx.options()
			opts.Mode = metadata.ModeOff
			opts.DryRun = true
			opts.VariantOnly = variantOnly

			res, err := chef.Run(cmd.Context(), cfg, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := report.PrintTree(out, res.Root, maxLevel); err != nil {
				return err
			}
			fmt.Fprintln(out, report.TopLevel(res.Root))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language (defaults to run.language)")
	cmd.Flags().StringVar(&variant, "variant", "", "Curriculum variant")
	cmd.Flags().IntVar(&maxLevel, "max-level", 0, "Deepest level to print (defaults to report.max_level)")
	cmd.Flags().BoolVar(&variantOnly, "variant-only", false, "Drop shared courses for the variant")
	return cmd
}
