package deps

import (
	"os"
	"path/filepath"
	"testing"

	"loom/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("present binary status = %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary status = %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unset binary status = %#v", results[2])
	}

	missing := Missing(results)
	if len(missing) != 2 {
		t.Fatalf("missing = %d, want 2", len(missing))
	}
}

func TestForConfig(t *testing.T) {
	cfg := config.Default()
	reqs := ForConfig(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("requirements = %d, want 2", len(reqs))
	}
	if reqs[0].Command != cfg.Tools.FFprobe || reqs[1].Command != cfg.Tools.FFmpeg {
		t.Fatalf("requirements = %+v", reqs)
	}
}
