package testsupport

import (
	"path/filepath"
	"testing"

	"kachef/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Network-backed enrichment is off so runs only touch local fixtures.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.LockDir = filepath.Join(base, "locks")
	cfgVal.Paths.MetadataPath = filepath.Join(base, "metadata_by_slug.json")
	cfgVal.Paths.SubLangsDB = filepath.Join(base, "sublangs.db")
	cfgVal.Paths.TranslationsDir = filepath.Join(base, "translations")
	cfgVal.Source.UseCache = true
	cfgVal.Subtitles.Enabled = false
	cfgVal.CommonCore.Enabled = false
	cfgVal.Assessment.Enabled = false
	cfgVal.Dubbing.CSVURL = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRun sets the run language and variant.
func WithRun(lang, variant string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Language = lang
		b.cfg.Run.Variant = variant
	}
}

// WithMetadataMode sets the metadata mode.
func WithMetadataMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metadata.Mode = mode
	}
}

// WithVerboseReport turns on the INCLUDE/EXCLUDE report.
func WithVerboseReport() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Report.Verbose = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}

// WithCurationRules writes rules as the run's curation file.
func WithCurationRules(rules string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "curation.yaml")
		WriteFile(b.t, path, rules)
		b.cfg.Paths.CurationFile = path
	}
}
