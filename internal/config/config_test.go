package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loom/internal/config"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, t.TempDir(), `
[transcoder]
base_url = "https://transcode.example.com/v1"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "loom")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Transcoder.PollMaxAttempts != 15 {
		t.Fatalf("unexpected poll attempts: %d", cfg.Transcoder.PollMaxAttempts)
	}
	if cfg.Transcoder.PollBaseDelayMS != 500 {
		t.Fatalf("unexpected poll base delay: %d", cfg.Transcoder.PollBaseDelayMS)
	}
	if cfg.Storage.SessionsDir != "sessions" {
		t.Fatalf("unexpected sessions dir: %q", cfg.Storage.SessionsDir)
	}
	if cfg.Ingest.TitleMaxWords != 5 {
		t.Fatalf("unexpected title max words: %d", cfg.Ingest.TitleMaxWords)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "loom.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadRequiresTranscoderBaseURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, t.TempDir(), "")

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for missing transcoder base url")
	}
	if !strings.Contains(err.Error(), "transcoder.base_url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsInvalidTranscoderURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, t.TempDir(), `
[transcoder]
base_url = "not a url"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for invalid transcoder url")
	}
}

func TestTranscoderAPIKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOOM_TRANSCODER_API_KEY", "secret-token")
	path := writeConfig(t, t.TempDir(), `
[transcoder]
base_url = "https://transcode.example.com"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Transcoder.APIKey != "secret-token" {
		t.Fatalf("expected api key from env, got %q", cfg.Transcoder.APIKey)
	}
}

func TestEnsureDirectoriesCreatesTree(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.BucketDir = filepath.Join(base, "bucket")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Storage.BucketDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}
