package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kachef/internal/chef"
	"kachef/internal/config"
	"kachef/internal/logging"
	"kachef/internal/metadata"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	sources      *chef.Sources

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string, sources *chef.Sources) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		sources:      sources,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// processLogger is built once per invocation. A logger that cannot be built
// falls back to a no-op one; runs still write their own log files.
func (c *commandContext) processLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) options() chef.Options {
	return chef.Options{
		Sources: c.sources,
		Logger:  c.processLogger(),
	}
}

// runConfig returns a copy of the loaded config targeting the language and
// variant flags when the user set them.
func (c *commandContext) runConfig(cmd *cobra.Command, lang, variant string) (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("lang") {
		lang = cfg.Run.Language
	}
	if !cmd.Flags().Changed("variant") {
		variant = cfg.Run.Variant
	}
	return cfg.WithRun(lang, variant), nil
}

func parseModeFlag(value string) (metadata.Mode, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	mode, err := metadata.ParseMode(value)
	if err != nil {
		return "", fmt.Errorf("--mode: %w", err)
	}
	return mode, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
