// Package logging builds the slog loggers used by the daemon and CLI.
//
// Two handler formats are supported: a human-oriented console format and a
// machine-oriented JSON format. Both honor a shared level variable so the
// level can be adjusted without rebuilding handlers. Typed attribute helpers
// and standardized field names keep structured output consistent across
// components.
package logging
