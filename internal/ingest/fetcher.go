package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"loom/internal/logging"
	"loom/internal/services"
)

// MediaWriter is the object-store slice the fetcher writes into.
type MediaWriter interface {
	WriteStream(ctx context.Context, objectPath string, r io.Reader) (int64, error)
}

const defaultFetchTimeout = 2 * time.Minute

// Fetcher streams answer media from the provider's URLs into the object
// store.
type Fetcher struct {
	objects    MediaWriter
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchClient overrides the HTTP client, primarily for tests.
func WithFetchClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithFetchTimeout bounds each individual media download.
func WithFetchTimeout(timeout time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithFetchLogger attaches a logger to the fetcher.
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logging.NewComponentLogger(logger, "ingest")
		}
	}
}

// NewFetcher builds a media fetcher writing into objects.
func NewFetcher(objects MediaWriter, opts ...FetcherOption) (*Fetcher, error) {
	if objects == nil {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "new_fetcher", "object store is required", nil)
	}
	fetcher := &Fetcher{
		objects:    objects,
		httpClient: &http.Client{},
		timeout:    defaultFetchTimeout,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher, nil
}

// Fetch downloads one media URL into the object store under objectDir and
// returns the object path. An empty media URL is skipped with an empty
// path; the provider omits the URL for answers with no recording.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL, objectDir, filename string) (string, error) {
	if strings.TrimSpace(mediaURL) == "" {
		return "", nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ingest", "fetch", fmt.Sprintf("build request for %s", mediaURL), err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "ingest", "fetch", fmt.Sprintf("download %s", mediaURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "ingest", "fetch",
			fmt.Sprintf("download %s: unexpected status %d", mediaURL, resp.StatusCode), nil)
	}

	objectPath := strings.TrimSuffix(objectDir, "/") + "/" + filename
	written, err := f.objects.WriteStream(ctx, objectPath, resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "ingest", "fetch", fmt.Sprintf("store %s", objectPath), err)
	}

	f.logger.DebugContext(ctx, "answer media stored",
		slog.String("object", objectPath),
		slog.Int64("bytes", written))
	return objectPath, nil
}
