// Package docstore persists sessions and the inbound event queue in SQLite.
//
// Sessions are keyed by tenant and response-series identifiers; a unique
// index makes the upsert race-safe and AppendSection runs in a transaction
// so concurrent section merges never lose an append. Events carry raw
// webhook payloads through an at-least-once pending/processing/completed
// lifecycle consumed by the daemon's processor loop.
package docstore
