// Package daemon hosts the long-running loom process: the webhook intake
// API, the event processor loop that drives section assembly, and the media
// endpoint serving tokenized bucket objects. A file lock enforces a single
// daemon instance per data directory.
package daemon
