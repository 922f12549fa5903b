package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Storage and domain sentinels (store.ErrAccountNotFound, domain.ErrInvalidAmount,
// domain.ErrMalformedCardNumber and the rest) pass through wrapped, so callers
// check them with errors.Is as well.
var (
	// ErrNoActiveSession indicates an operation that needs a logged-in account
	// was called while logged out.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrNoActiveSession = errors.New("no active session")

	// ErrInvalidCredentials indicates a login whose card number or PIN did not match.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("wrong card number or PIN")

	// ErrSessionNotFound indicates a session identifier that the registry does not hold.
	ErrSessionNotFound = errors.New("session not found")
)

// LedgerServiceError wraps a failure of a LedgerService operation.
type LedgerServiceError struct {
	// Operation is the operation that failed (e.g., "deposit", "transfer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for LedgerServiceError.
func (e *LedgerServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *LedgerServiceError) Unwrap() error {
	return e.Err
}

// NewLedgerServiceError returns a new LedgerServiceError.
func NewLedgerServiceError(operation, message string, err error) *LedgerServiceError {
	return &LedgerServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
