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

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Storage contains configuration for the media object store.
type Storage struct {
	BucketDir     string `toml:"bucket_dir"`
	BaseURL       string `toml:"base_url"`
	ResponsesDir  string `toml:"responses_dir"`
	SessionsDir   string `toml:"sessions_dir"`
	ThumbnailsDir string `toml:"thumbnails_dir"`
}

// Transcoder contains configuration for the remote transcoding service.
type Transcoder struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	PollMaxAttempts int    `toml:"poll_max_attempts"`
	PollBaseDelayMS int    `toml:"poll_base_delay_ms"`
}

// Ingest contains configuration for webhook payload processing.
type Ingest struct {
	CompletedStatus     string `toml:"completed_status"`
	LabelStripWord      string `toml:"label_strip_word"`
	TitleMaxWords       int    `toml:"title_max_words"`
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
}

// Tools contains external binary names for media inspection.
type Tools struct {
	FFprobe string `toml:"ffprobe"`
	FFmpeg  string `toml:"ffmpeg"`
}

// Workflow contains configuration for daemon timing and retries.
type Workflow struct {
	EventPollInterval int `toml:"event_poll_interval"`
	ThumbnailRetries  int `toml:"thumbnail_retries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for loom.
//
// Configuration sections by subsystem:
//   - Paths: directories and API bind address
//   - Storage: object store root, URL base, and layout
//   - Transcoder: remote merge service endpoint and poll policy
//   - Ingest: webhook payload handling rules
//   - Tools: ffprobe/ffmpeg binaries
//   - Workflow: daemon polling intervals and retry budgets
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Storage    Storage    `toml:"storage"`
	Transcoder Transcoder `toml:"transcoder"`
	Ingest     Ingest     `toml:"ingest"`
	Tools      Tools      `toml:"tools"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// LogDir returns the normalized log directory.
func (c *Config) LogDir() string { return c.Paths.LogDir }

// DatabasePath returns the location of the document store database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "loom.db")
}

// LockPath returns the daemon singleton lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "loomd.lock")
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/loom/config.toml")
}

// SampleConfig returns the embedded sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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

	projectPath, err := filepath.Abs("loom.toml")
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

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.StagingDir, c.Paths.LogDir, c.Storage.BucketDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
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
