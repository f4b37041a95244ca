package testsupport

import (
	"context"
	"testing"

	"loom/internal/docstore"
)

// MustOpenStore opens a docstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, dbPath string) *docstore.Store {
	t.Helper()

	store, err := docstore.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("docstore.OpenPath: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// EnqueueEvent stores a raw webhook payload for tests using the provided
// store.
func EnqueueEvent(t testing.TB, store *docstore.Store, tenantID, payloadJSON string) *docstore.Event {
	t.Helper()

	event, err := store.EnqueueEvent(context.Background(), tenantID, payloadJSON)
	if err != nil {
		t.Fatalf("store.EnqueueEvent: %v", err)
	}
	return event
}
