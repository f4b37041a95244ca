// Package services defines the shared error taxonomy and context helpers
// used across pipeline components.
//
// Errors raised by collaborators are tagged with one of the exported sentinel
// errors so that callers can classify failures without inspecting message
// text: validation problems are never retried, transient I/O problems may be
// retried where a component opts in, and configuration problems indicate
// operator action is required.
package services
