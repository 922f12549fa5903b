// Package api serves the ledger over HTTP. Handlers decode and validate JSON
// requests, call the ledger services and map their results and errors to
// status codes and client-safe messages.
package api
