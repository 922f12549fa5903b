// Package service contains the ledger's use cases. It orchestrates the domain
// types and the AccountStore (defined in internal/store) to implement
// sessions, account creation, deposits, transfers and account closure.
//
// Key components:
//
// 1. LedgerService:
//   - Holds at most one authenticated account as session state
//   - Runs every read-check-write sequence inside a store unit of work
//   - Emits a ledger event after each completed change
//
// 2. SessionRegistry:
//   - Keeps one LedgerService per logged-in client of the HTTP server
//
// Services receive their dependencies through constructor injection and never
// depend on a specific storage backend.
package service
