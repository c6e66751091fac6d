package main

import (
	"log/slog"
	"strings"
	"sync"

	"manifesto/internal/config"
	"manifesto/internal/loader"
	"manifesto/internal/logging"
	"manifesto/internal/manifest"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// loadManifest parses the manifest at path using the configured options.
func (c *commandContext) loadManifest(path string) (*manifest.Manifest, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return loader.LoadWithOptions(path, manifest.Options{
		StrictIntegrity: cfg.Parse.StrictIntegrity,
		Logger:          logging.NewComponentLogger(c.logger(), "parser"),
	})
}
