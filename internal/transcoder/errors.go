package transcoder

import (
	"fmt"

	"loom/internal/services"
)

// FailureError reports a job that reached a non-success terminal or
// unrecognized state. Failed jobs are not retried.
type FailureError struct {
	JobID string
	State State
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("transcode job %s ended in state %s", e.JobID, e.State)
}

func (e *FailureError) Unwrap() error { return services.ErrExternalTool }

// RetryExhaustedError reports that a job was still in flight after the poll
// attempt budget ran out.
type RetryExhaustedError struct {
	JobID string
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("max retries exceeded for job %s", e.JobID)
}

func (e *RetryExhaustedError) Unwrap() error { return services.ErrTimeout }
