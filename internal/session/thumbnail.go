package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loom/internal/logging"
	"loom/internal/retry"
	"loom/internal/services"
)

// ObjectStore is the slice of the media bucket the pipeline uses.
type ObjectStore interface {
	Download(ctx context.Context, objectPath, destPath string) error
	WriteStream(ctx context.Context, objectPath string, r io.Reader) (int64, error)
	PreviewURL(objectPath string) (string, error)
}

// FrameExtractor captures a single still frame from a video file.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, mediaPath, outputPath string) error
}

// ThumbnailSaver persists a generated thumbnail reference onto a session.
type ThumbnailSaver interface {
	SaveThumbnail(ctx context.Context, key Key, thumbnailURL, storagePath string) error
}

// ThumbnailPipeline produces a poster image for a session's first merged
// video: download the video to staging, grab one frame, upload it with a
// tokenized URL, and record the URL on the session. Only the final save is
// retried; the earlier stages fail the run outright.
type ThumbnailPipeline struct {
	objects       ObjectStore
	frames        FrameExtractor
	saver         ThumbnailSaver
	stagingDir    string
	thumbnailsDir string
	savePolicy    retry.Policy
	sleep         retry.SleepFunc
	logger        *slog.Logger
}

// ThumbnailOption customizes a ThumbnailPipeline.
type ThumbnailOption func(*ThumbnailPipeline)

// WithSaveRetries sets the retry budget for the final save stage.
func WithSaveRetries(maxRetries int, baseDelay time.Duration) ThumbnailOption {
	return func(p *ThumbnailPipeline) {
		p.savePolicy = retry.Policy{MaxRetries: maxRetries, BaseDelay: baseDelay}
	}
}

// WithThumbnailSleeper overrides the retry sleep function, for tests.
func WithThumbnailSleeper(sleep retry.SleepFunc) ThumbnailOption {
	return func(p *ThumbnailPipeline) {
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

// WithThumbnailLogger attaches a logger to the pipeline.
func WithThumbnailLogger(logger *slog.Logger) ThumbnailOption {
	return func(p *ThumbnailPipeline) {
		if logger != nil {
			p.logger = logging.NewComponentLogger(logger, "thumbnail")
		}
	}
}

// NewThumbnailPipeline wires the pipeline's collaborators. stagingDir holds
// the transient video and frame files; thumbnailsDir is the per-tenant
// directory name uploads land in ({tenant}/{thumbnailsDir}/).
func NewThumbnailPipeline(objects ObjectStore, frames FrameExtractor, saver ThumbnailSaver, stagingDir, thumbnailsDir string, opts ...ThumbnailOption) (*ThumbnailPipeline, error) {
	if objects == nil || frames == nil || saver == nil {
		return nil, services.Wrap(services.ErrConfiguration, "thumbnail", "new_pipeline", "objects, frames, and saver are required", nil)
	}
	pipeline := &ThumbnailPipeline{
		objects:       objects,
		frames:        frames,
		saver:         saver,
		stagingDir:    stagingDir,
		thumbnailsDir: thumbnailsDir,
		savePolicy:    retry.Policy{MaxRetries: 2, BaseDelay: 500 * time.Millisecond},
		sleep:         retry.Sleep,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(pipeline)
	}
	return pipeline, nil
}

// Generate runs the four stages for the given session key and merged video
// object. Staging files are removed on the way out.
func (p *ThumbnailPipeline) Generate(ctx context.Context, key Key, videoObjectPath string) error {
	base := key.SeriesID
	videoPath := filepath.Join(p.stagingDir, base+".mp4")
	framePath := filepath.Join(p.stagingDir, base+".png")
	defer os.Remove(videoPath)
	defer os.Remove(framePath)

	if err := p.objects.Download(ctx, videoObjectPath, videoPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "download", fmt.Sprintf("download video %s", videoObjectPath), err)
	}

	if err := p.frames.ExtractFrame(ctx, videoPath, framePath); err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "extract", "capture still frame", err)
	}

	objectPath := key.TenantID + "/" + strings.Trim(p.thumbnailsDir, "/") + "/" + base + ".png"
	frame, err := os.Open(framePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "upload", "open still frame", err)
	}
	_, writeErr := p.objects.WriteStream(ctx, objectPath, frame)
	frame.Close()
	if writeErr != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "upload", "upload still frame", writeErr)
	}
	thumbnailURL, err := p.objects.PreviewURL(objectPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "upload", "mint thumbnail URL", err)
	}

	err = retry.DoWithSleeper(ctx, p.savePolicy, p.sleep, func(ctx context.Context) error {
		return p.saver.SaveThumbnail(ctx, key, thumbnailURL, objectPath)
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "thumbnail", "save", "record thumbnail on session", err)
	}

	p.logger.InfoContext(ctx, "thumbnail generated",
		slog.String(logging.FieldTenantID, key.TenantID),
		slog.String(logging.FieldSessionID, key.SeriesID),
		slog.String("object", objectPath))
	return nil
}
