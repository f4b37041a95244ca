package transcoder

import (
	"context"
	"log/slog"
	"time"

	"loom/internal/logging"
	"loom/internal/response"
	"loom/internal/retry"
	"loom/internal/services"
)

const (
	defaultPollMaxAttempts = 15
	defaultPollBaseDelay   = 500 * time.Millisecond
)

// Merger submits concatenation jobs and waits for them to finish.
type Merger struct {
	client      Client
	maxAttempts int
	baseDelay   time.Duration
	sleep       retry.SleepFunc
	logger      *slog.Logger
}

// MergerOption customizes a Merger.
type MergerOption func(*Merger)

// WithPollBudget sets the poll attempt budget and base delay.
func WithPollBudget(maxAttempts int, baseDelay time.Duration) MergerOption {
	return func(m *Merger) {
		if maxAttempts > 0 {
			m.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			m.baseDelay = baseDelay
		}
	}
}

// WithSleeper overrides the sleep function used between polls, for tests.
func WithSleeper(sleep retry.SleepFunc) MergerOption {
	return func(m *Merger) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// WithLogger attaches a logger to the merger.
func WithLogger(logger *slog.Logger) MergerOption {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logging.NewComponentLogger(logger, "transcoder")
		}
	}
}

// NewMerger builds a Merger around the given client.
func NewMerger(client Client, opts ...MergerOption) (*Merger, error) {
	if client == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcoder", "new_merger", "client is required", nil)
	}
	merger := &Merger{
		client:      client,
		maxAttempts: defaultPollMaxAttempts,
		baseDelay:   defaultPollBaseDelay,
		sleep:       retry.Sleep,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(merger)
	}
	return merger, nil
}

// Merge submits a concatenation job for the clips and blocks until the job
// succeeds, fails, or the poll budget runs out. Clip order is preserved in
// the output timeline.
func (m *Merger) Merge(ctx context.Context, outputURI, outputName string, clips []response.AnswerClip) (Job, error) {
	request := BuildMergeRequest(outputURI, outputName, clips)
	job, err := m.client.CreateJob(ctx, request)
	if err != nil {
		return Job{}, err
	}
	m.logger.InfoContext(ctx, "transcode job submitted",
		slog.String(logging.FieldJobID, job.ID),
		slog.Int("clips", len(clips)),
		slog.String("output", outputURI))
	return m.waitForJob(ctx, job.ID)
}

// waitForJob polls until the job reaches a terminal state. The first poll
// happens immediately after submission; later waits grow exponentially with
// jitter from the base delay.
func (m *Merger) waitForJob(ctx context.Context, jobID string) (Job, error) {
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		job, err := m.client.GetJob(ctx, jobID)
		if err != nil {
			return Job{}, err
		}
		switch job.State {
		case StateSucceeded:
			m.logger.InfoContext(ctx, "transcode job succeeded",
				slog.String(logging.FieldJobID, jobID),
				slog.Int("polls", attempt+1))
			return job, nil
		case StatePending, StateRunning:
			m.logger.DebugContext(ctx, "transcode job in flight",
				slog.String(logging.FieldJobID, jobID),
				slog.String("state", string(job.State)),
				slog.Int("attempt", attempt+1))
			if err := m.sleep(ctx, retry.Backoff(attempt, m.baseDelay)); err != nil {
				return Job{}, err
			}
		default:
			// FAILED and anything unrecognized are terminal.
			return Job{}, &FailureError{JobID: jobID, State: job.State}
		}
	}
	return Job{}, &RetryExhaustedError{JobID: jobID}
}
