// Package frames extracts still images from video files using ffmpeg.
package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Extractor produces representative still images from local video files.
type Extractor struct {
	binary string
}

// Option configures the extractor.
type Option func(*Extractor)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(e *Extractor) {
		if strings.TrimSpace(binary) != "" {
			e.binary = binary
		}
	}
}

// NewExtractor constructs an Extractor using defaults.
func NewExtractor(opts ...Option) *Extractor {
	extractor := &Extractor{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(extractor)
	}
	return extractor
}

// ExtractFrame writes the first frame of the video at mediaPath to
// outputPath; ffmpeg picks the image encoder from the output extension.
// Exactly one image is produced; an existing file at outputPath is
// overwritten.
func (e *Extractor) ExtractFrame(ctx context.Context, mediaPath, outputPath string) error {
	if strings.TrimSpace(mediaPath) == "" {
		return errors.New("extract frame: media path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("extract frame: output path required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("extract frame: create output directory: %w", err)
	}

	cmd := commandContext(ctx, e.binary,
		"-v", "error",
		"-i", mediaPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("extract frame: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
