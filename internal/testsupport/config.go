package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"loom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
	onPath  bool
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Storage.BucketDir = filepath.Join(base, "bucket")
	cfgVal.Transcoder.BaseURL = "http://127.0.0.1:1/transcoder"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTranscoderURL points the test config at a transcoding service, usually
// an httptest server.
func WithTranscoderURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcoder.BaseURL = baseURL
	}
}

// WithStorageBaseURL overrides the public media URL prefix.
func WithStorageBaseURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.BaseURL = baseURL
	}
}

// WithStubbedBinaries writes do-nothing stub executables for the provided
// names and prepends them to PATH. If names is empty, the default external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe", "ffmpeg"}
		}
		for _, name := range names {
			b.installStub(name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubScript installs a stub executable with the given shell script body
// and prepends the stub directory to PATH.
func WithStubScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		b.installStub(name, script)
	}
}

func (b *configBuilder) installStub(name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	if b.onPath {
		return
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	b.onPath = true
}
