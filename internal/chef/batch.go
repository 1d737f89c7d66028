package chef

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"kachef/internal/config"
	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/metadata"
	"kachef/internal/report"
	"kachef/internal/services"
)

// Spec names one run of a batch.
type Spec struct {
	Language string
	Variant  string
}

func (s Spec) String() string { return runKey(s.Language, s.Variant) }

// ParseSpec reads "lang" or "lang/variant".
func ParseSpec(value string) (Spec, error) {
	value = strings.TrimSpace(value)
	lang, variant, _ := strings.Cut(value, "/")
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return Spec{}, services.Wrap(services.ErrValidation, "chef", "parse run", fmt.Sprintf("empty language in %q", value), nil)
	}
	return Spec{Language: language.Normalize(lang), Variant: strings.TrimSpace(variant)}, nil
}

// Batch runs every spec. The metadata generation run, if any, goes first
// and alone so the others consume a fresh map; the rest run at most
// parallelism at a time. A failed run is recorded in its result and never
// cancels the others. Results keep the order of specs.
func Batch(ctx context.Context, cfg *config.Config, specs []Spec, parallelism int, opts Options) []*Result {
	logger := logging.NewComponentLogger(opts.Logger, "batch")
	if parallelism <= 0 {
		parallelism = 1
	}
	results := make([]*Result, len(specs))
	start := time.Now()

	run := func(i int) {
		spec := specs[i]
		res, err := Run(ctx, cfg.WithRun(spec.Language, spec.Variant), opts)
		if res == nil {
			res = &Result{Language: spec.Language, Variant: spec.Variant, Err: err}
		}
		if err != nil {
			logging.ErrorWithContext(logger, "batch run failed", "batch_run_failed",
				logging.String("run", spec.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, services.Hint(err)),
			)
		}
		results[i] = res
	}

	generation := -1
	for i, spec := range specs {
		if resolvedMode(cfg, opts.Mode, spec) == metadata.ModeGenerate {
			generation = i
			break
		}
	}
	if generation >= 0 {
		logger.Info("running metadata generation first", logging.String("run", specs[generation].String()))
		run(generation)
	}

	g := new(errgroup.Group)
	g.SetLimit(parallelism)
	for i := range specs {
		if i == generation {
			continue
		}
		g.Go(func() error {
			run(i)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Info("batch finished",
		logging.Int("runs", len(specs)),
		logging.Int("failed", failed),
		logging.Int("parallelism", parallelism),
		logging.String("duration", time.Since(start).Round(time.Millisecond).String()),
	)
	return results
}

func resolvedMode(cfg *config.Config, override metadata.Mode, spec Spec) metadata.Mode {
	mode, err := selectMode(cfg, override, spec.Language, spec.Variant)
	if err != nil {
		return ""
	}
	return mode
}

// RenderResults formats batch results as a table.
func RenderResults(results []*Result) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		if res.Err != nil {
			status = "failed: " + res.Err.Error()
		}
		output := res.TreePath
		if output == "" {
			output = res.MetadataPath
		}
		rows = append(rows, []string{
			runKey(res.Language, res.Variant),
			string(res.Mode),
			fmt.Sprint(res.Included),
			fmt.Sprint(res.ExcludedTotal()),
			res.Duration.Round(time.Millisecond).String(),
			output,
			status,
		})
	}
	return report.Table(
		[]string{"Run", "Mode", "Included", "Excluded", "Duration", "Output", "Status"},
		rows,
		[]report.Align{report.AlignLeft, report.AlignLeft, report.AlignRight, report.AlignRight, report.AlignRight, report.AlignLeft, report.AlignLeft},
	)
}
