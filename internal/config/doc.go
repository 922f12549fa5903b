// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml. It selects the
// account store backend and carries the connection settings each backend needs.
package config
