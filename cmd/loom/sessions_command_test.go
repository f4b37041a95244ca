package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loom/internal/session"
)

func TestSessionRows(t *testing.T) {
	sessions := []*session.Session{
		{
			TenantID:       "clinic-1",
			SeriesID:       "series-1",
			Status:         session.StatusNew,
			Patient:        session.Patient{Name: "Pat Doe"},
			Sections:       []session.Section{{SectionID: "sec-1"}, {SectionID: "sec-2"}},
			ThumbnailImage: "http://host/o/thumb.png?alt=media&token=x",
			UpdatedAt:      time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			TenantID: "clinic-2",
			SeriesID: "series-9",
			Status:   session.StatusNew,
		},
	}

	rows := sessionRows(sessions)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "clinic-1" || rows[0][4] != 2 || rows[0][5] != "yes" {
		t.Fatalf("row = %v", rows[0])
	}
	if rows[0][6] != "2026-08-01 09:30" {
		t.Fatalf("updated = %v", rows[0][6])
	}
	if rows[1][5] != "no" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestSessionsCommandAgainstDaemon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" {
			t.Fatalf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sessions": [{"tenantId": "clinic-1", "seriesId": "series-1", "status": "New", "patient": {"name": "Pat Doe"}, "sections": [], "createdAt": "2026-08-01T09:30:00Z", "updatedAt": "2026-08-01T09:30:00Z"}]}`))
	}))
	defer server.Close()

	out, err := runCommand(t, "sessions", "--addr", server.URL)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "clinic-1") || !strings.Contains(out, "Pat Doe") {
		t.Fatalf("output = %q", out)
	}
}

func TestSessionsCommandEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sessions": []}`))
	}))
	defer server.Close()

	out, err := runCommand(t, "sessions", "--addr", server.URL)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if !strings.Contains(out, "No sessions assembled yet.") {
		t.Fatalf("output = %q", out)
	}
}
