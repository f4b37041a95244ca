package api

import "loom/internal/session"

// StatusResponse is the wire form of GET /api/status.
type StatusResponse struct {
	Running   bool           `json:"running"`
	Events    map[string]int `json:"events"`
	Processed int64          `json:"processed"`
	Failed    int64          `json:"failed"`
	DBPath    string         `json:"dbPath"`
}

// SessionListResponse is the wire form of GET /api/sessions.
type SessionListResponse struct {
	Sessions []*session.Session `json:"sessions"`
}

// WebhookResponse is the wire form of POST /api/webhook.
type WebhookResponse struct {
	EventID int64 `json:"eventId"`
}

// ErrorResponse is the wire form of any API failure.
type ErrorResponse struct {
	Error string `json:"error"`
}
