package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loom/internal/session"
)

const maxResponseBody = 4 << 20

// Client talks to a running loom daemon over its HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithClientHTTP overrides the underlying HTTP client.
func WithClientHTTP(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient builds a client for the daemon listening at addr, a host:port
// or full base URL.
func NewClient(addr string, opts ...ClientOption) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("daemon address is required")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	client := &Client{
		baseURL:    strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var status StatusResponse
	if err := c.get(ctx, "/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Sessions fetches all assembled sessions.
func (c *Client) Sessions(ctx context.Context) ([]*session.Session, error) {
	var list SessionListResponse
	if err := c.get(ctx, "/api/sessions", &list); err != nil {
		return nil, err
	}
	return list.Sessions, nil
}

// SubmitWebhook delivers a raw webhook payload to the daemon.
func (c *Client) SubmitWebhook(ctx context.Context, payload io.Reader) (*WebhookResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/webhook", payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var accepted WebhookResponse
	if err := c.do(req, http.StatusAccepted, &accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, http.StatusOK, out)
}

func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read daemon response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		var apiErr ErrorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}
