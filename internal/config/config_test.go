package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"kachef/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("KACHEF_LANG", "")
	t.Setenv("KACHEF_VARIANT", "")
	t.Setenv("KACHEF_LOG_LEVEL", "")
	t.Setenv("KACHEF_DATA_DIR", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
}

func TestLoadDefaultConfigExpandsDerivedPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	dataDir := filepath.Join(tempHome, ".local", "share", "kachef")
	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, dataDir)
	}
	if want := filepath.Join(dataDir, "khantsvcache"); cfg.Paths.CacheDir != want {
		t.Fatalf("unexpected cache dir: got %q want %q", cfg.Paths.CacheDir, want)
	}
	if want := filepath.Join(dataDir, "metadata_by_slug.json"); cfg.Paths.MetadataPath != want {
		t.Fatalf("unexpected metadata path: got %q want %q", cfg.Paths.MetadataPath, want)
	}
	if cfg.Source.Format != "tsv" {
		t.Fatalf("expected tsv source by default, got %q", cfg.Source.Format)
	}
	if cfg.Source.GCSBucket != "public-content-export-data" {
		t.Fatalf("unexpected bucket: %q", cfg.Source.GCSBucket)
	}
	if cfg.Run.Language != "en" || cfg.Run.Variant != "" {
		t.Fatalf("unexpected run selection: %q/%q", cfg.Run.Language, cfg.Run.Variant)
	}
	if !cfg.Run.OnlyListed {
		t.Fatal("expected only_listed enabled by default")
	}
	if cfg.Metadata.Mode != "auto" {
		t.Fatalf("expected metadata mode auto, got %q", cfg.Metadata.Mode)
	}
	if cfg.HTTP.MaxRetries != 5 {
		t.Fatalf("expected 5 retries, got %d", cfg.HTTP.MaxRetries)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"data_dir":      "~/ka",
			"output_dir":    filepath.Join(tempHome, "out"),
			"curation_file": "~/rules.yaml",
		},
		"source":   map[string]any{"format": "API"},
		"run":      map[string]any{"language": "fr", "variant": "", "batch_parallelism": 4, "english_subtitles": true},
		"metadata": map[string]any{"mode": "Consume", "tracking": true},
		"logging":  map[string]any{"format": "JSON", "level": "DEBUG"},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "ka") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.LockDir != filepath.Join(tempHome, "ka", "locks") {
		t.Fatalf("unexpected lock dir: %q", cfg.Paths.LockDir)
	}
	if cfg.Source.Format != "api" {
		t.Fatalf("expected api format, got %q", cfg.Source.Format)
	}
	if cfg.Paths.CurationFile != filepath.Join(tempHome, "rules.yaml") {
		t.Fatalf("unexpected curation file: %q", cfg.Paths.CurationFile)
	}
	if cfg.Run.Language != "fr" || cfg.Run.BatchParallelism != 4 || !cfg.Run.EnglishSubtitles {
		t.Fatalf("unexpected run section: %+v", cfg.Run)
	}
	if cfg.Metadata.Mode != "consume" || !cfg.Metadata.Tracking {
		t.Fatalf("unexpected metadata section: %+v", cfg.Metadata)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestLoadHonoursEnvironmentFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KACHEF_LANG", "pt-BR")
	t.Setenv("KACHEF_VARIANT", "pt-pt")
	t.Setenv("KACHEF_LOG_LEVEL", "warn")
	creds := filepath.Join(t.TempDir(), "sa.json")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", creds)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Run.Language != "pt-BR" || cfg.Run.Variant != "pt-pt" {
		t.Fatalf("unexpected run selection: %q/%q", cfg.Run.Language, cfg.Run.Variant)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env log level, got %q", cfg.Logging.Level)
	}
	if cfg.Source.GCSCredentialsFile != creds {
		t.Fatalf("expected credentials from env, got %q", cfg.Source.GCSCredentialsFile)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"source format", func(c *config.Config) { c.Source.Format = "xml" }, "source.format"},
		{"metadata mode", func(c *config.Config) { c.Metadata.Mode = "sometimes" }, "metadata.mode"},
		{"language", func(c *config.Config) { c.Run.Language = "en us" }, "run.language"},
		{"parallelism", func(c *config.Config) { c.Run.BatchParallelism = 64 }, "run.batch_parallelism"},
		{"graphql", func(c *config.Config) {
			c.Assessment.Enabled = true
			c.Assessment.GraphQLURL = "https://example.com/graphql"
		}, "assessment.graphql_url"},
		{"subtitle url", func(c *config.Config) { c.Subtitles.ListURL = "https://example.com" }, "subtitles.list_url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Source.GCSBucket != "public-content-export-data" {
		t.Fatalf("unexpected bucket in sample: %q", cfg.Source.GCSBucket)
	}
}

func TestEnsureDirectoriesAndWithRun(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.CacheDir, cfg.Paths.OutputDir, cfg.Paths.LockDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}

	other := cfg.WithRun(" es ", "")
	if other.Run.Language != "es" {
		t.Fatalf("unexpected language: %q", other.Run.Language)
	}
	if cfg.Run.Language != "en" {
		t.Fatalf("WithRun mutated original: %q", cfg.Run.Language)
	}
}
