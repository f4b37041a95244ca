package transcoder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientCreateJob(t *testing.T) {
	var gotAuth string
	var gotRequest JobRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(Job{ID: "job-42", State: "pending"})
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "secret")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	job, err := client.CreateJob(context.Background(), JobRequest{OutputURI: "http://store/out/"})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.ID != "job-42" || job.State != StatePending {
		t.Fatalf("job = %+v", job)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotRequest.OutputURI != "http://store/out/" {
		t.Fatalf("request output uri = %q", gotRequest.OutputURI)
	}
}

func TestHTTPClientGetJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/job-7" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Job{ID: "job-7", State: "SUCCEEDED"})
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	job, err := client.GetJob(context.Background(), "job-7")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.State != StateSucceeded {
		t.Fatalf("job state = %q", job.State)
	}
}

func TestHTTPClientRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewHTTPClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if _, err := client.GetJob(context.Background(), "job-1"); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient("   ", "key"); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
