package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedCardNumber is returned when a card number string is not
	// exactly 16 decimal digits.
	ErrMalformedCardNumber = errors.New("malformed card number")

	// ErrInvalidIndustryCode is returned when the major industry identifier
	// derived from an issuer prefix falls outside 1..9.
	ErrInvalidIndustryCode = errors.New("invalid industry code")

	// ErrInvalidAmount is returned for negative deposit or transfer amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPIN is returned when a PIN is not four decimal digits.
	ErrInvalidPIN = errors.New("invalid PIN")

	// ErrNegativeBalance is returned when an account balance would drop below zero.
	ErrNegativeBalance = errors.New("balance cannot be negative")
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping err.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
