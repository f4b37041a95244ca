package transcoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loom/internal/services"
)

// Job is the service's view of a submitted job.
type Job struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Client talks to the transcoding service.
type Client interface {
	CreateJob(ctx context.Context, request JobRequest) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)
}

const defaultRequestTimeout = 30 * time.Second

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// HTTPOption customizes an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPDoer overrides the underlying http.Client, primarily for tests.
func WithHTTPDoer(client *http.Client) HTTPOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestTimeout bounds each individual request.
func WithRequestTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewHTTPClient builds a client for the service at baseURL. The API key is
// optional; when set it is sent as a bearer token.
func NewHTTPClient(baseURL, apiKey string, opts ...HTTPOption) (*HTTPClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcoder", "new_client", "base URL is required", nil)
	}
	client := &HTTPClient{
		baseURL:    trimmed,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{},
		timeout:    defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// CreateJob submits a job and returns the service's job record.
func (c *HTTPClient) CreateJob(ctx context.Context, request JobRequest) (Job, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return Job{}, services.Wrap(services.ErrExternalTool, "transcoder", "create_job", "encode request", err)
	}
	var job Job
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body), &job); err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "transcoder", "create_job", "submit job", err)
	}
	if job.ID == "" {
		return Job{}, services.Wrap(services.ErrExternalTool, "transcoder", "create_job", "service returned job without id", nil)
	}
	job.State = ParseState(string(job.State))
	return job, nil
}

// GetJob fetches the current state of a job.
func (c *HTTPClient) GetJob(ctx context.Context, jobID string) (Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return Job{}, services.Wrap(services.ErrValidation, "transcoder", "get_job", "job id is required", nil)
	}
	var job Job
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID, nil, &job); err != nil {
		return Job{}, services.Wrap(services.ErrTransient, "transcoder", "get_job", fmt.Sprintf("poll job %s", jobID), err)
	}
	job.State = ParseState(string(job.State))
	return job, nil
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body io.Reader, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
