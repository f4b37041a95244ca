// Package config loads, normalizes, and validates loom configuration.
//
// Configuration lives in a TOML file (default ~/.config/loom/config.toml,
// with a project-local loom.toml fallback). Load applies defaults first, then
// file values, then environment fallbacks for secrets, and finally expands
// every path field to an absolute location before validation.
package config
