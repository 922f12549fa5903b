// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the ledger's core logic, so the service layer works unchanged against the
// in-memory, PostgreSQL and Redis backends under internal/platform.
package store
