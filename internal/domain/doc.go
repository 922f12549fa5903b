// Package domain contains the core ledger entities and value objects: card
// numbers with their Luhn check digit, accounts, and the errors raised when
// either is malformed. Nothing in this package touches storage.
package domain
