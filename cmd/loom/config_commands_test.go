package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "api_bind") {
		t.Fatalf("sample config missing api_bind:\n%s", data)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	if _, err := runCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")
	contents := `[paths]
data_dir    = "` + filepath.Join(base, "data") + `"
staging_dir = "` + filepath.Join(base, "staging") + `"
log_dir     = "` + filepath.Join(base, "logs") + `"

[storage]
bucket_dir = "` + filepath.Join(base, "bucket") + `"

[transcoder]
base_url = "http://127.0.0.1:9/jobs"
`
	if err := os.WriteFile(target, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCommand(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("output = %q", out)
	}
}
