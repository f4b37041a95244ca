package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeTranscoder()
	c.normalizeIngest()
	c.normalizeTools()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeStorage() {
	if expanded, err := expandPath(c.Storage.BucketDir); err == nil {
		c.Storage.BucketDir = expanded
	}
	c.Storage.BaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.BaseURL), "/")
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = defaultStorageBaseURL
	}
	c.Storage.ResponsesDir = strings.Trim(strings.TrimSpace(c.Storage.ResponsesDir), "/")
	if c.Storage.ResponsesDir == "" {
		c.Storage.ResponsesDir = defaultResponsesDir
	}
	c.Storage.SessionsDir = strings.Trim(strings.TrimSpace(c.Storage.SessionsDir), "/")
	if c.Storage.SessionsDir == "" {
		c.Storage.SessionsDir = defaultSessionsDir
	}
	c.Storage.ThumbnailsDir = strings.Trim(strings.TrimSpace(c.Storage.ThumbnailsDir), "/")
	if c.Storage.ThumbnailsDir == "" {
		c.Storage.ThumbnailsDir = defaultThumbnailsDir
	}
}

func (c *Config) normalizeTranscoder() {
	c.Transcoder.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcoder.BaseURL), "/")
	c.Transcoder.APIKey = strings.TrimSpace(c.Transcoder.APIKey)
	if c.Transcoder.APIKey == "" {
		if value, ok := os.LookupEnv("LOOM_TRANSCODER_API_KEY"); ok {
			c.Transcoder.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Transcoder.TimeoutSeconds <= 0 {
		c.Transcoder.TimeoutSeconds = defaultTranscoderTimeoutSeconds
	}
	if c.Transcoder.PollMaxAttempts <= 0 {
		c.Transcoder.PollMaxAttempts = defaultPollMaxAttempts
	}
	if c.Transcoder.PollBaseDelayMS <= 0 {
		c.Transcoder.PollBaseDelayMS = defaultPollBaseDelayMS
	}
}

func (c *Config) normalizeIngest() {
	c.Ingest.CompletedStatus = strings.ToLower(strings.TrimSpace(c.Ingest.CompletedStatus))
	if c.Ingest.CompletedStatus == "" {
		c.Ingest.CompletedStatus = defaultCompletedStatus
	}
	c.Ingest.LabelStripWord = strings.TrimSpace(c.Ingest.LabelStripWord)
	if c.Ingest.TitleMaxWords <= 0 {
		c.Ingest.TitleMaxWords = defaultTitleMaxWords
	}
	if c.Ingest.FetchTimeoutSeconds <= 0 {
		c.Ingest.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.EventPollInterval <= 0 {
		c.Workflow.EventPollInterval = defaultEventPollInterval
	}
	if c.Workflow.ThumbnailRetries < 0 {
		c.Workflow.ThumbnailRetries = defaultThumbnailRetries
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
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
