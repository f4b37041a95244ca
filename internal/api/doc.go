// Package api defines the wire types of the daemon's HTTP API and a small
// client for them, shared between the daemon and the CLI.
package api
