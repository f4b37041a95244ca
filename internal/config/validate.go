package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateTranscoder(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.BucketDir) == "" {
		return errors.New("storage.bucket_dir must be set")
	}
	if _, err := url.Parse(c.Storage.BaseURL); err != nil {
		return fmt.Errorf("storage.base_url is not a valid URL: %w", err)
	}
	return nil
}

func (c *Config) validateTranscoder() error {
	if c.Transcoder.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/loom/config.toml"
		}
		return fmt.Errorf("transcoder.base_url is required. Edit %s (create with 'loom config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Transcoder.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("transcoder.base_url is not a valid URL: %q", c.Transcoder.BaseURL)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.EventPollInterval <= 0 {
		return errors.New("workflow.event_poll_interval must be positive")
	}
	return nil
}
