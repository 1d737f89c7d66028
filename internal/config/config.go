package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations used by a run.
type Paths struct {
	DataDir         string `toml:"data_dir"`
	CacheDir        string `toml:"cache_dir"`
	OutputDir       string `toml:"output_dir"`
	LogDir          string `toml:"log_dir"`
	LockDir         string `toml:"lock_dir"`
	MetadataPath    string `toml:"metadata_path"`
	SubLangsDB      string `toml:"sublangs_db"`
	TranslationsDir string `toml:"translations_dir"`

	// CurationFile replaces the built-in curation rules when set.
	CurationFile string `toml:"curation_file"`
}

// Source selects where the flat snapshot comes from.
type Source struct {
	Format             string `toml:"format"`
	GCSBucket          string `toml:"gcs_bucket"`
	GCSCredentialsFile string `toml:"gcs_credentials_file"`
	APIBaseURL         string `toml:"api_base_url"`
	UseCache           bool   `toml:"use_cache"`
}

// Run holds the per-run selection and filtering knobs.
type Run struct {
	Language          string `toml:"language"`
	Variant           string `toml:"variant"`
	OnlyListed        bool   `toml:"only_listed"`
	ReferenceLanguage string `toml:"reference_language"`
	BatchParallelism  int    `toml:"batch_parallelism"`

	// EnglishSubtitles adds an English-audio copy next to every dubbed video
	// in non-reference-language runs.
	EnglishSubtitles bool `toml:"english_subtitles"`
}

// Metadata configures slug metadata propagation.
type Metadata struct {
	Mode     string `toml:"mode"`
	Tracking bool   `toml:"tracking"`
}

// Assessment configures exercise question retrieval.
type Assessment struct {
	Enabled    bool   `toml:"enabled"`
	GraphQLURL string `toml:"graphql_url"`
}

// Subtitles configures subtitle language discovery.
type Subtitles struct {
	Enabled       bool   `toml:"enabled"`
	ListURL       string `toml:"list_url"`
	CacheTTLHours int    `toml:"cache_ttl_hours"`
}

// Dubbing configures the dubbed-video spreadsheet.
type Dubbing struct {
	CSVURL string `toml:"csv_url"`
}

// CommonCore configures Common Core standard tagging.
type CommonCore struct {
	Enabled bool   `toml:"enabled"`
	CSVURL  string `toml:"csv_url"`
}

// HTTP contains shared HTTP client settings.
type HTTP struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	UserAgent      string `toml:"user_agent"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Report configures the human-readable audit output.
type Report struct {
	Verbose  bool `toml:"verbose"`
	MaxLevel int  `toml:"max_level"`
}

// Config encapsulates all configuration values for kachef.
//
// Configuration sections by subsystem:
//   - Paths: caches, outputs, logs, locks, metadata map
//   - Source: TSV export bucket or legacy JSON API
//   - Run: language, variant, and filtering defaults
//   - Metadata: generation/consumption mode selection
//   - Assessment, Subtitles, Dubbing, CommonCore: per-node enrichment sources
//   - HTTP: timeouts and retry budget for KA endpoints
//   - Logging, Report: operator-facing output
type Config struct {
	Paths      Paths      `toml:"paths"`
	Source     Source     `toml:"source"`
	Run        Run        `toml:"run"`
	Metadata   Metadata   `toml:"metadata"`
	Assessment Assessment `toml:"assessment"`
	Subtitles  Subtitles  `toml:"subtitles"`
	Dubbing    Dubbing    `toml:"dubbing"`
	CommonCore CommonCore `toml:"common_core"`
	HTTP       HTTP       `toml:"http"`
	Logging    Logging    `toml:"logging"`
	Report     Report     `toml:"report"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/kachef/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("kachef.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DataDir,
		c.Paths.CacheDir,
		c.Paths.OutputDir,
		c.Paths.LogDir,
		c.Paths.LockDir,
		filepath.Dir(c.Paths.MetadataPath),
		filepath.Dir(c.Paths.SubLangsDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WithRun returns a copy of the config targeting another language and variant.
// Batch runs use it so each run owns an independent value.
func (c *Config) WithRun(language, variant string) *Config {
	clone := *c
	clone.Run.Language = strings.TrimSpace(language)
	clone.Run.Variant = strings.TrimSpace(variant)
	return &clone
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
