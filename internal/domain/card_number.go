package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// IssuerIdentifier is the six-digit prefix carried by every card this ledger issues.
	IssuerIdentifier = 400000

	// CardNumberLength is the exact length of every formatted card number.
	CardNumberLength = 16

	// MaxAccountIdentifier is the largest account identifier that fits the nine-digit field.
	MaxAccountIdentifier = 999_999_999
)

// CardNumber is an immutable card number split into its issuer prefix,
// account identifier and Luhn check digit.
type CardNumber struct {
	iin        int
	accountID  int64
	checkDigit int
}

// NewCardNumber builds the card number for accountID under IssuerIdentifier,
// computing the check digit.
func NewCardNumber(accountID int64) (CardNumber, error) {
	if accountID < 0 || accountID > MaxAccountIdentifier {
		return CardNumber{}, NewValidationError(
			"account_id",
			fmt.Sprintf("must be between 0 and %d", MaxAccountIdentifier),
			ErrValidation,
		)
	}

	return CardNumber{
		iin:        IssuerIdentifier,
		accountID:  accountID,
		checkDigit: DeriveChecksum(IssuerIdentifier, accountID),
	}, nil
}

// ParseCardNumber splits a 16-digit string into its fields. The check digit
// is taken as given; use IsValidNumber to verify it.
func ParseCardNumber(s string) (CardNumber, error) {
	if len(s) != CardNumberLength || !isDigits(s) {
		return CardNumber{}, fmt.Errorf("%w: expected %d digits", ErrMalformedCardNumber, CardNumberLength)
	}

	// The digit check above guarantees these conversions succeed.
	iin, _ := strconv.Atoi(s[:6])
	accountID, _ := strconv.ParseInt(s[6:15], 10, 64)

	return CardNumber{
		iin:        iin,
		accountID:  accountID,
		checkDigit: int(s[15] - '0'),
	}, nil
}

// IIN returns the six-digit issuer identification number.
func (c CardNumber) IIN() int { return c.iin }

// AccountID returns the nine-digit account identifier embedded in the number.
func (c CardNumber) AccountID() int64 { return c.accountID }

// CheckDigit returns the trailing Luhn check digit.
func (c CardNumber) CheckDigit() int { return c.checkDigit }

// String formats the card number as exactly 16 digits.
func (c CardNumber) String() string {
	return Format(c.iin, c.accountID, c.checkDigit)
}

// IsZero reports whether c is the zero CardNumber.
func (c CardNumber) IsZero() bool {
	return c == CardNumber{}
}

// Industry returns the industry category encoded by the issuer prefix.
func (c CardNumber) Industry() (Industry, error) {
	return IndustryOf(c.iin)
}

// Brand returns the payment network the issuer prefix belongs to.
func (c CardNumber) Brand() Brand {
	return BrandOf(c.iin)
}

// Format zero-pads the three card number fields into a 16-character string.
func Format(iin int, accountID int64, checkDigit int) string {
	return fmt.Sprintf("%06d%09d%d", iin, accountID, checkDigit)
}

// DeriveChecksum returns the Luhn check digit for the 15-digit body formed by
// iin and accountID.
func DeriveChecksum(iin int, accountID int64) int {
	sum := luhnSum(fmt.Sprintf("%06d%09d0", iin, accountID))
	return (10 - sum%10) % 10
}

// IsValidNumber reports whether s is 16 digits whose Luhn sum is divisible by 10.
// It never consults storage.
func IsValidNumber(s string) bool {
	if len(s) != CardNumberLength || !isDigits(s) {
		return false
	}
	return luhnSum(s)%10 == 0
}

// MaskCardNumber keeps the first six and last four digits and masks the rest,
// for use in log lines.
func MaskCardNumber(s string) string {
	if len(s) < 10 {
		return strings.Repeat("*", len(s))
	}
	return s[:6] + strings.Repeat("*", len(s)-10) + s[len(s)-4:]
}

// luhnSum doubles digits at even 0-based positions counted from the left.
// This matches the right-to-left rule only for even-length inputs.
func luhnSum(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
