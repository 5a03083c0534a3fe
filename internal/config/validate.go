package config

import (
	"errors"
	"fmt"
)

var (
	validFormats   = map[string]bool{"csv": true, "json": true, "html": true, "markdown": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGitHub() error {
	if c.GitHub.BaseURL == "" {
		return errors.New("github.base_url must be set")
	}
	if c.GitHub.MaxResults < 1 || c.GitHub.MaxResults > 1000 {
		return fmt.Errorf("github.max_results must be between 1 and 1000, got %d", c.GitHub.MaxResults)
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be between 1 and 100, got %d", c.GitHub.PerPage)
	}
	if c.GitHub.TimeoutSeconds <= 0 {
		return errors.New("github.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.Path == "" {
		return errors.New("cache.path must be set when the cache is enabled")
	}
	if c.Cache.TTLHours < 0 {
		return errors.New("cache.ttl_hours must not be negative")
	}
	return nil
}

func (c *Config) validateReport() error {
	if !validFormats[c.Report.Format] {
		return fmt.Errorf("report.format %q is not one of csv, json, html, markdown", c.Report.Format)
	}
	if c.Report.TopK < 0 {
		return errors.New("report.top_k must not be negative")
	}
	if c.Report.WarnBelow < 0 || c.Report.WarnBelow > 100 {
		return errors.New("report.warn_below must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
