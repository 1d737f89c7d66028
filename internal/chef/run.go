package chef

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"kachef/internal/admission"
	"kachef/internal/channel"
	"kachef/internal/commoncore"
	"kachef/internal/config"
	"kachef/internal/curation"
	"kachef/internal/dubbing"
	"kachef/internal/kaapi"
	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/metadata"
	"kachef/internal/nodes"
	"kachef/internal/rawstore"
	"kachef/internal/report"
	"kachef/internal/services"
	"kachef/internal/snapshot"
	"kachef/internal/sublangs"
	"kachef/internal/translations"
	"kachef/internal/treebuild"
)

// Options tunes one run beyond what the configuration says.
type Options struct {
	// Mode overrides metadata.mode when set.
	Mode metadata.Mode
	// VariantOnly drops shared courses for variants without a curated tree.
	VariantOnly bool
	// Verbose writes the INCLUDE/EXCLUDE listing next to the tree.
	Verbose bool
	// DryRun builds the tree without writing the tree or metadata map.
	DryRun bool
	// Curation replaces the rules named by paths.curation_file when set.
	Curation *curation.Rules
	Sources  *Sources
	Logger   *slog.Logger
}

// Result summarizes a finished run. Err is set when the run failed; the
// other fields hold whatever was known at that point.
type Result struct {
	RunID    string
	Language string
	Variant  string
	Mode     metadata.Mode

	Records  int
	Included int
	Excluded map[admission.Reason]int
	TopLevel int
	Unused   []string

	TreePath      string
	ReportPath    string
	MetadataPath  string
	MetadataSlugs int

	// Root is the built tree, kept for callers that render it.
	Root *nodes.Topic

	Duration time.Duration
	Err      error
}

// ExcludedTotal sums the exclusion counts.
func (r *Result) ExcludedTotal() int {
	total := 0
	for _, n := range r.Excluded {
		total += n
	}
	return total
}

// Run builds the channel for cfg.Run.Language and cfg.Run.Variant.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	start := time.Now()
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "chef", "run", "config is required", nil)
	}
	lang := language.Normalize(cfg.Run.Language)
	variant := cfg.Run.Variant
	result := &Result{
		RunID:    uuid.NewString(),
		Language: lang,
		Variant:  variant,
		Excluded: map[admission.Reason]int{},
	}
	fail := func(err error) (*Result, error) {
		result.Err = err
		result.Duration = time.Since(start)
		return result, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "chef", "prepare", "create directories", err))
	}
	lock, err := acquireLock(cfg.Paths.LockDir, lang, variant)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = lock.Unlock() }()

	ctx = services.WithRunID(ctx, result.RunID)
	ctx = services.WithLanguage(ctx, lang)
	ctx = services.WithVariant(ctx, variant)
	logger, closeLog := runLogger(ctx, cfg, opts.Logger, lang, variant, result.RunID)
	defer closeLog()
	logger = logging.NewComponentLogger(logger, "chef")

	mode, err := selectMode(cfg, opts.Mode, lang, variant)
	if err != nil {
		return fail(err)
	}
	result.Mode = mode
	logger.Info("run started",
		logging.String("mode", string(mode)),
		logging.String("format", cfg.Source.Format),
	)

	var consumed metadata.Map
	if mode == metadata.ModeConsume {
		consumed, err = metadata.Load(cfg.Paths.MetadataPath)
		if err != nil {
			return fail(err)
		}
		logger.Info("metadata map loaded", logging.String("path", cfg.Paths.MetadataPath), logging.Int("slugs", len(consumed)))
	}

	client := opts.Sources.http(cfg)
	store, err := loadStore(ctx, cfg, opts.Sources, client, logger)
	if err != nil {
		return fail(err)
	}
	result.Records = store.Len()

	rc, cleanup, err := newRunContext(ctx, cfg, opts, mode, consumed, store, client, logger)
	if err != nil {
		return fail(err)
	}
	defer cleanup()

	var verbose *report.Verbose
	var reportFile *os.File
	if opts.Verbose || cfg.Report.Verbose {
		result.ReportPath = ReportPath(cfg.Paths.OutputDir, lang, variant)
		reportFile, err = os.Create(result.ReportPath)
		if err != nil {
			return fail(services.Wrap(services.ErrConfiguration, "chef", "report", "create verbose report", err))
		}
		defer reportFile.Close()
		verbose = report.NewVerbose(reportFile)
		rc.Recorder = verbose
	}

	built, err := treebuild.Build(services.WithStage(ctx, "build"), rc)
	if err != nil {
		return fail(err)
	}
	result.Root = built.Root
	result.Included = built.Included
	result.Excluded = built.Excluded
	result.TopLevel = len(built.Root.Children)
	result.Unused = built.Unused
	if verbose != nil && verbose.Err() != nil {
		logging.WarnWithContext(logger, "verbose report incomplete", "report_write_failed",
			logging.Error(verbose.Err()),
			logging.String("path", result.ReportPath),
		)
	}

	switch {
	case opts.DryRun:
		logger.Info("dry run, nothing written")
	case mode == metadata.ModeGenerate:
		if err := writeMetadata(cfg, rc.Collector, result, logger); err != nil {
			return fail(err)
		}
	default:
		result.TreePath = channel.OutputPath(cfg.Paths.OutputDir, lang, variant)
		doc := channel.Encode(channel.NewInfo(lang, variant), built.Root)
		if err := channel.WriteFile(result.TreePath, doc); err != nil {
			return fail(err)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("run finished",
		logging.String("mode", string(mode)),
		logging.Int("included", result.Included),
		logging.Int("excluded", result.ExcludedTotal()),
		logging.String("tree", result.TreePath),
		logging.String("metadata", result.MetadataPath),
		logging.String("duration", result.Duration.Round(time.Millisecond).String()),
	)
	return result, nil
}

// LoadSnapshot loads the raw records for cfg.Run.Language the way a run
// would, without taking the run lock.
func LoadSnapshot(ctx context.Context, cfg *config.Config, opts Options) (*rawstore.Store, error) {
	logger := logging.NewComponentLogger(opts.Logger, "chef")
	return loadStore(ctx, cfg, opts.Sources, opts.Sources.http(cfg), logger)
}

func loadStore(ctx context.Context, cfg *config.Config, sources *Sources, client *kaapi.Client, logger *slog.Logger) (*rawstore.Store, error) {
	loader := &snapshot.Loader{
		CacheDir:          cfg.Paths.CacheDir,
		UseCache:          cfg.Source.UseCache,
		Objects:           sources.objects(cfg),
		API:               client,
		APIBaseURL:        cfg.Source.APIBaseURL,
		ReferenceLanguage: cfg.Run.ReferenceLanguage,
		Dubs:              loadDubbing(ctx, cfg, client, logger),
		Logger:            logger,
	}
	if closer, ok := loader.Objects.(io.Closer); ok {
		defer closer.Close()
	}
	return loader.Load(services.WithStage(ctx, "snapshot"), cfg.Source.Format, language.Normalize(cfg.Run.Language))
}

// ReportPath is {dir}/kachef_report_{lang}[_{variant}].txt.
func ReportPath(dir, lang, variant string) string {
	name := "kachef_report_" + lang
	if variant != "" {
		name += "_" + variant
	}
	return filepath.Join(dir, name+".txt")
}

func selectMode(cfg *config.Config, override metadata.Mode, lang, variant string) (metadata.Mode, error) {
	mode := override
	if mode == "" {
		parsed, err := metadata.ParseMode(cfg.Metadata.Mode)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "chef", "metadata mode", cfg.Metadata.Mode, err)
		}
		mode = parsed
	}
	return metadata.Resolve(mode, lang, variant, cfg.Run.ReferenceLanguage), nil
}

// runLogger tees the process logger into a per-run JSON file. A file that
// cannot be opened costs the run its log file, nothing else.
func runLogger(ctx context.Context, cfg *config.Config, base *slog.Logger, lang, variant, runID string) (*slog.Logger, func()) {
	if base == nil {
		base = logging.NewNop()
	}
	name := fmt.Sprintf("kachef-%s-%s.log", fileKey(lang, variant), runID)
	handler, closer, err := logging.NewRunFileHandler(cfg.Paths.LogDir, name, cfg.Logging.Level)
	if err != nil {
		logging.WarnWithContext(base, "run log unavailable", "run_log_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run logs to the console only"),
		)
		return logging.WithContext(ctx, base), func() {}
	}
	logger := logging.TeeLogger(base, handler)
	return logging.WithContext(ctx, logger), func() { _ = closer.Close() }
}

func fileKey(lang, variant string) string {
	if variant == "" {
		return lang
	}
	return lang + "-" + variant
}

func loadDubbing(ctx context.Context, cfg *config.Config, client *kaapi.Client, logger *slog.Logger) dubbing.Map {
	if cfg.Dubbing.CSVURL == "" {
		return nil
	}
	dubs, err := dubbing.Fetch(ctx, client, cfg.Dubbing.CSVURL, logger)
	if err != nil {
		logging.WarnWithContext(logger, "dubbed video sheet unavailable", "dubbing_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no dubbed id remapping for this run"),
		)
		return nil
	}
	return dubs
}

func loadCommonCore(ctx context.Context, cfg *config.Config, client *kaapi.Client, lang, variant string, logger *slog.Logger) nodes.StandardTags {
	if !cfg.CommonCore.Enabled || lang != "en" || variant == "in-in" {
		return nil
	}
	tags, err := commoncore.Fetch(ctx, client, cfg.CommonCore.CSVURL, logger)
	if err != nil {
		logging.WarnWithContext(logger, "common core sheet unavailable", "common_core_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "exercises carry no standard tags"),
		)
		return nil
	}
	return tags
}

// newRunContext assembles the per-run state. The returned cleanup releases
// the subtitle cache.
func newRunContext(ctx context.Context, cfg *config.Config, opts Options, mode metadata.Mode, consumed metadata.Map, store *rawstore.Store, client *kaapi.Client, logger *slog.Logger) (*treebuild.RunContext, func(), error) {
	lang := language.Normalize(cfg.Run.Language)
	variant := cfg.Run.Variant
	cleanup := func() {}

	memory, err := translations.Load(cfg.Paths.TranslationsDir, lang, logger)
	if err != nil {
		return nil, cleanup, services.Wrap(services.ErrCorrupt, "chef", "translations", "load translation memory", err)
	}
	allow, err := dubbing.DefaultAllowList()
	if err != nil {
		return nil, cleanup, services.Wrap(services.ErrConfiguration, "chef", "dubbing", "embedded allow-list", err)
	}
	rules := opts.Curation
	if rules == nil {
		if rules, err = curation.LoadFile(cfg.Paths.CurationFile); err != nil {
			return nil, cleanup, err
		}
	}

	factory := &nodes.Factory{
		Language:          lang,
		ReferenceLanguage: cfg.Run.ReferenceLanguage,
		Translations:      memory,
		CommonCore:        loadCommonCore(ctx, cfg, client, lang, variant, logger),
		Logger:            logger,
	}
	rc := &treebuild.RunContext{
		Language: lang,
		Variant:  variant,
		Store:    store,
		Factory:  factory,
		Curation: rules,
		Logger:   logger,

		EnglishSubtitles: cfg.Run.EnglishSubtitles,
	}

	switch mode {
	case metadata.ModeConsume:
		factory.Metadata = consumed
	case metadata.ModeGenerate:
		seed, err := metadata.DefaultRules()
		if err != nil {
			return nil, cleanup, services.Wrap(services.ErrConfiguration, "chef", "metadata", "embedded tag rules", err)
		}
		rc.Collector = metadata.NewCollector(seed)
	}

	filter := &admission.Filter{
		Language:          lang,
		Variant:           variant,
		ReferenceLanguage: cfg.Run.ReferenceLanguage,
		OnlyListed:        cfg.Run.OnlyListed && mode != metadata.ModeGenerate,
		VariantOnly:       opts.VariantOnly,
		Blacklist:         rules.Blacklist(lang, variant, logger),
		Dubs:              allow,
		Logger:            logger,
	}
	if cfg.Subtitles.Enabled {
		db, err := sublangs.Open(cfg.Paths.SubLangsDB)
		if err != nil {
			logging.WarnWithContext(logger, "subtitle cache unavailable", "sublangs_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "subtitle listings are fetched without persistence"),
			)
			db = nil
		} else {
			cleanup = func() { _ = db.Close() }
		}
		ttl := time.Duration(cfg.Subtitles.CacheTTLHours) * time.Hour
		filter.Subtitles = sublangs.NewCache(db, client, cfg.Subtitles.ListURL, ttl, logger)
	}
	rc.Filter = filter

	if cfg.Assessment.Enabled {
		rc.Questions = &treebuild.AssessmentQuestions{
			Fetcher:     client,
			URLTemplate: cfg.Assessment.GraphQLURL,
			Language:    lang,
		}
	}
	return rc, cleanup, nil
}

func writeMetadata(cfg *config.Config, collector *metadata.Collector, result *Result, logger *slog.Logger) error {
	aggregated := collector.Aggregate()
	if err := metadata.Save(cfg.Paths.MetadataPath, aggregated); err != nil {
		return err
	}
	result.MetadataPath = cfg.Paths.MetadataPath
	result.MetadataSlugs = len(aggregated)
	if cfg.Metadata.Tracking {
		tracking := collector.Track(logger)
		if err := metadata.SaveTracking(cfg.Paths.MetadataPath, tracking); err != nil {
			return err
		}
		logger.Info("metadata tracking written", logging.String("path", metadata.TrackingPath(cfg.Paths.MetadataPath)))
	}
	logger.Info("metadata map written",
		logging.String("path", cfg.Paths.MetadataPath),
		logging.Int("slugs", result.MetadataSlugs),
	)
	return nil
}
