package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kachef/internal/preflight"
	"kachef/internal/snapshot"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var variant string
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, metadata map, and sources before a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig(cmd, lang, variant)
			if err != nil {
				return err
			}

			opts := preflight.Options{Offline: offline}
			if !offline && cfg.Source.Format == "tsv" {
				if ctx.sources != nil && ctx.sources.Objects != nil {
					opts.Objects = ctx.sources.Objects
				} else if gcs, err := snapshot.NewGCSStore(cmd.Context(), cfg.Source.GCSBucket, cfg.Source.GCSCredentialsFile); err == nil {
					defer gcs.Close()
					opts.Objects = gcs
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "export bucket unavailable:", err)
				}
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			title := "Status " + cfg.Run.Language
			if cfg.Run.Variant != "" {
				title += "/" + cfg.Run.Variant
			}
			lines := renderSectionHeader(title, colorize)
			failed := 0
			for _, result := range preflight.RunAll(cmd.Context(), cfg, opts) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed++
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if failed > 0 {
				return fmt.Errorf("%d preflight checks failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to check (defaults to run.language)")
	cmd.Flags().StringVar(&variant, "variant", "", "Curriculum variant")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that need the network")
	return cmd
}
