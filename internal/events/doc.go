// Package events provides the ledger's domain events and the plumbing that
// delivers them.
//
// Services emit events without knowing which handlers will process them.
// The primary components are:
// - LedgerEvent: a completed change to an account
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - LoggingHandler and RedisStreamPublisher: the handlers wired by the server
package events
