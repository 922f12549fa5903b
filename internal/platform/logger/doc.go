// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package. Loggers travel through
// context.Context so request-scoped attributes follow a call into the store.
package logger
