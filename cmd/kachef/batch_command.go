package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kachef/internal/chef"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var parallelism int
	var mode string
	var variantOnly bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "batch <lang[/variant]>...",
		Short: "Build several languages, metadata generation first",
		Example: "  kachef batch en en/us-cc en/in-in fr pt-BR\n" +
			"  kachef batch --parallelism 4 es fr de",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			specs := make([]chef.Spec, 0, len(args))
			for _, arg := range args {
				spec, err := chef.ParseSpec(arg)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}
			if !cmd.Flags().Changed("parallelism") {
				parallelism = cfg.Run.BatchParallelism
			}
			if parallelism < 1 {
				return errors.New("--parallelism must be at least 1")
			}

			opts := ctx.options()
			if opts.Mode, err = parseModeFlag(mode); err != nil {
				return err
			}
			opts.VariantOnly = variantOnly
			opts.Verbose = verbose

			results := chef.Batch(cmd.Context(), cfg, specs, parallelism, opts)
			fmt.Fprintln(cmd.OutOrStdout(), chef.RenderResults(results))

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Concurrent runs (defaults to run.batch_parallelism)")
	cmd.Flags().StringVar(&mode, "mode", "", "Metadata mode override applied to every run")
	cmd.Flags().BoolVar(&variantOnly, "variant-only", false, "Drop shared courses for variant runs")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Write INCLUDE/EXCLUDE reports")
	return cmd
}
