package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every AccountStore backend. Backend-specific failures
// are wrapped around one of these so callers never inspect driver errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUnavailable covers connectivity and I/O faults. Stores do not retry.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrConflict means a concurrent writer won: serialization failure,
	// deadlock or a modified WATCH key.
	ErrConflict = errors.New("storage conflict")

	ErrTransactionFailed = errors.New("transaction failed")

	ErrAccountNotFound  = fmt.Errorf("%w: account", ErrNotFound)
	ErrDuplicateAccount = fmt.Errorf("%w: account", ErrDuplicate)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool { return errors.Is(err, ErrDuplicate) }

// StoreError annotates a failure with the entity and operation involved.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError builds a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
