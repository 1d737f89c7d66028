package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kachef/internal/chef"
	"kachef/internal/report"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var variant string
	var mode string
	var variantOnly bool
	var verbose bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the channel tree for one language",
		Long: "Build loads the KA snapshot for a language, applies the curation rules and\n" +
			"admission gates, and writes the channel tree JSON. For the reference\n" +
			"language without a variant the default metadata mode generates the\n" +
			"metadata map instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig(cmd, lang, variant)
			if err != nil {
				return err
			}
			opts := ctx.options()
			if opts.Mode, err = parseModeFlag(mode); err != nil {
				return err
			}
			opts.VariantOnly = variantOnly
			opts.Verbose = verbose
			opts.DryRun = dryRun

			res, runErr := chef.Run(cmd.Context(), cfg, opts)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if res != nil {
				fmt.Fprintln(out, strings.Join(renderRunSummary(res, colorize), "\n"))
				if runErr == nil && res.Root != nil && len(res.Root.Children) > 0 {
					fmt.Fprintln(out, report.TopLevel(res.Root))
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Target language (defaults to run.language)")
	cmd.Flags().StringVar(&variant, "variant", "", "Curriculum variant, e.g. us-cc or in-in")
	cmd.Flags().StringVar(&mode, "mode", "", "Metadata mode override: auto, generate, consume, off")
	cmd.Flags().BoolVar(&variantOnly, "variant-only", false, "Drop shared courses that do not carry the variant's curriculum key")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Write the INCLUDE/EXCLUDE report next to the tree")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build without writing the tree or metadata map")
	return cmd
}
