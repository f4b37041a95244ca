package frames

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractFrameValidatesArguments(t *testing.T) {
	extractor := NewExtractor()
	if err := extractor.ExtractFrame(context.Background(), "", "out.jpg"); err == nil {
		t.Fatal("expected error for empty media path")
	}
	if err := extractor.ExtractFrame(context.Background(), "in.mp4", " "); err == nil {
		t.Fatal("expected error for empty output path")
	}
}

func TestExtractFrameBuildsSingleFrameCommand(t *testing.T) {
	var gotArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = append([]string{name}, args...)
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	out := filepath.Join(t.TempDir(), "thumb.jpg")
	extractor := NewExtractor(WithBinary("ffmpeg-test"))
	if err := extractor.ExtractFrame(context.Background(), "session.mp4", out); err != nil {
		t.Fatalf("extract frame: %v", err)
	}

	if gotArgs[0] != "ffmpeg-test" {
		t.Fatalf("unexpected binary: %q", gotArgs[0])
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-frames:v 1", "-i session.mp4", "-y"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in command %q", want, joined)
		}
	}
}
