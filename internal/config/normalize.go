package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeRun()
	c.normalizeMetadata()
	c.normalizeEndpoints()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("KACHEF_DATA_DIR"); ok && strings.TrimSpace(c.Paths.DataDir) == defaultDataDir {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key   string
		value *string
		def   string
	}{
		{"paths.cache_dir", &c.Paths.CacheDir, defaultCacheSubdir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputSubdir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogSubdir},
		{"paths.lock_dir", &c.Paths.LockDir, defaultLockSubdir},
		{"paths.metadata_path", &c.Paths.MetadataPath, defaultMetadataFile},
		{"paths.sublangs_db", &c.Paths.SubLangsDB, defaultSubLangsFile},
		{"paths.translations_dir", &c.Paths.TranslationsDir, defaultTranslationsDir},
	}
	for _, d := range derived {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = filepath.Join(c.Paths.DataDir, d.def)
		}
		if *d.value, err = expandPath(*d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	if c.Paths.CurationFile = strings.TrimSpace(c.Paths.CurationFile); c.Paths.CurationFile != "" {
		if c.Paths.CurationFile, err = expandPath(c.Paths.CurationFile); err != nil {
			return fmt.Errorf("paths.curation_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.Format = strings.ToLower(strings.TrimSpace(c.Source.Format))
	if c.Source.Format == "" {
		c.Source.Format = defaultSourceFormat
	}
	c.Source.GCSBucket = strings.TrimSpace(c.Source.GCSBucket)
	if c.Source.GCSBucket == "" {
		c.Source.GCSBucket = defaultGCSBucket
	}
	c.Source.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Source.APIBaseURL), "/")
	if c.Source.APIBaseURL == "" {
		c.Source.APIBaseURL = defaultAPIBaseURL
	}
	if strings.TrimSpace(c.Source.GCSCredentialsFile) == "" {
		if value, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS"); ok {
			c.Source.GCSCredentialsFile = strings.TrimSpace(value)
		}
	}
	if c.Source.GCSCredentialsFile != "" {
		var err error
		if c.Source.GCSCredentialsFile, err = expandPath(c.Source.GCSCredentialsFile); err != nil {
			return fmt.Errorf("source.gcs_credentials_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRun() {
	if value, ok := os.LookupEnv("KACHEF_LANG"); ok && strings.TrimSpace(value) != "" {
		c.Run.Language = value
	}
	if value, ok := os.LookupEnv("KACHEF_VARIANT"); ok {
		c.Run.Variant = value
	}
	c.Run.Language = strings.TrimSpace(c.Run.Language)
	if c.Run.Language == "" {
		c.Run.Language = defaultLanguage
	}
	c.Run.Variant = strings.TrimSpace(c.Run.Variant)
	c.Run.ReferenceLanguage = strings.TrimSpace(c.Run.ReferenceLanguage)
	if c.Run.ReferenceLanguage == "" {
		c.Run.ReferenceLanguage = defaultReferenceLanguage
	}
	if c.Run.BatchParallelism <= 0 {
		c.Run.BatchParallelism = defaultBatchParallelism
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.Mode = strings.ToLower(strings.TrimSpace(c.Metadata.Mode))
	if c.Metadata.Mode == "" {
		c.Metadata.Mode = defaultMetadataMode
	}
}

func (c *Config) normalizeEndpoints() {
	c.Assessment.GraphQLURL = strings.TrimSpace(c.Assessment.GraphQLURL)
	if c.Assessment.GraphQLURL == "" {
		c.Assessment.GraphQLURL = defaultGraphQLURL
	}
	c.Subtitles.ListURL = strings.TrimSpace(c.Subtitles.ListURL)
	if c.Subtitles.ListURL == "" {
		c.Subtitles.ListURL = defaultSubtitleListURL
	}
	if c.Subtitles.CacheTTLHours <= 0 {
		c.Subtitles.CacheTTLHours = defaultSubtitleTTLHours
	}
	c.Dubbing.CSVURL = strings.TrimSpace(c.Dubbing.CSVURL)
	c.CommonCore.CSVURL = strings.TrimSpace(c.CommonCore.CSVURL)
	if c.HTTP.TimeoutSeconds <= 0 {
		c.HTTP.TimeoutSeconds = defaultHTTPTimeout
	}
	if c.HTTP.MaxRetries <= 0 {
		c.HTTP.MaxRetries = defaultHTTPMaxRetries
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
	if c.Report.MaxLevel <= 0 {
		c.Report.MaxLevel = defaultReportMaxLevel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("KACHEF_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
