package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"kachef/internal/language"
	"kachef/internal/report"
	"kachef/internal/snapshot"
)

func newExportsCommand(ctx *commandContext) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List the TSV exports available in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var objects snapshot.ObjectStore
			if ctx.sources != nil && ctx.sources.Objects != nil {
				objects = ctx.sources.Objects
			} else {
				gcs, err := snapshot.NewGCSStore(cmd.Context(), cfg.Source.GCSBucket, cfg.Source.GCSCredentialsFile)
				if err != nil {
					return err
				}
				defer gcs.Close()
				objects = gcs
			}

			exports, err := snapshot.ListExports(cmd.Context(), objects)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if strings.TrimSpace(lang) != "" {
				kalang := language.ToKALang(language.Normalize(lang))
				list := exports[kalang]
				if len(list) == 0 {
					return fmt.Errorf("no exports for %s (kalang %s) in gs://%s", lang, kalang, cfg.Source.GCSBucket)
				}
				for _, export := range list {
					fmt.Fprintln(out, export.Name)
				}
				return nil
			}

			kalangs := make([]string, 0, len(exports))
			for kalang := range exports {
				kalangs = append(kalangs, kalang)
			}
			sort.Strings(kalangs)
			rows := make([][]string, 0, len(kalangs))
			for _, kalang := range kalangs {
				list := exports[kalang]
				rows = append(rows, []string{kalang, fmt.Sprint(len(list)), list[len(list)-1].Name})
			}
			fmt.Fprintln(out, report.Table(
				[]string{"KA lang", "Exports", "Latest"},
				rows,
				[]report.Align{report.AlignLeft, report.AlignRight, report.AlignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "List every export for one language")
	return cmd
}
