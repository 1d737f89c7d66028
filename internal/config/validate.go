package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Format {
	case "tsv", "api":
	default:
		return fmt.Errorf("source.format must be \"tsv\" or \"api\", got %q", c.Source.Format)
	}
	if c.Source.Format == "tsv" && c.Source.GCSBucket == "" {
		return errors.New("source.gcs_bucket must be set for tsv snapshots")
	}
	return nil
}

func (c *Config) validateRun() error {
	if strings.ContainsAny(c.Run.Language, " /\\") {
		return fmt.Errorf("run.language %q is not a language code", c.Run.Language)
	}
	if strings.ContainsAny(c.Run.Variant, " /\\") {
		return fmt.Errorf("run.variant %q is not a curriculum key", c.Run.Variant)
	}
	if c.Run.BatchParallelism > 16 {
		return errors.New("run.batch_parallelism must be 16 or less")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	switch c.Metadata.Mode {
	case "auto", "generate", "consume", "off":
		return nil
	default:
		return fmt.Errorf("metadata.mode must be one of auto, generate, consume, off; got %q", c.Metadata.Mode)
	}
}

func (c *Config) validateEndpoints() error {
	if c.Assessment.Enabled && !strings.Contains(c.Assessment.GraphQLURL, "{lang}") {
		return errors.New("assessment.graphql_url must contain the {lang} placeholder")
	}
	if c.Subtitles.Enabled && !strings.Contains(c.Subtitles.ListURL, "{youtube_id}") {
		return errors.New("subtitles.list_url must contain the {youtube_id} placeholder")
	}
	if c.CommonCore.Enabled && c.CommonCore.CSVURL == "" {
		return errors.New("common_core.csv_url is required when common_core.enabled is true")
	}
	return nil
}
