package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// PINLength is the number of digits in an account PIN.
const PINLength = 4

// PINGenerator produces a fresh PIN for a new account.
type PINGenerator func() (string, error)

var pinRange = big.NewInt(9999)

// GeneratePIN returns a uniformly random integer in [1, 9999] formatted to four digits.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, pinRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()+1), nil
}

// ValidatePIN checks that pin is exactly four decimal digits.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength || !isDigits(pin) {
		return ErrInvalidPIN
	}
	return nil
}
