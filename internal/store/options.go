package store

import (
	"fmt"

	"github.com/phrazzld/cardledger/internal/domain"
)

// Option configures an AccountStore backend.
type Option func(*Options)

// Options holds settings shared by every AccountStore backend.
type Options struct {
	PINGenerator domain.PINGenerator
}

// WithPINGenerator replaces the random PIN source, mainly for tests.
func WithPINGenerator(gen domain.PINGenerator) Option {
	return func(o *Options) {
		if gen != nil {
			o.PINGenerator = gen
		}
	}
}

// ApplyOptions resolves opts over the defaults.
func ApplyOptions(opts ...Option) Options {
	o := Options{PINGenerator: domain.GeneratePIN}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAccountRecord validates the create arguments and builds the zero-balance
// account every backend persists.
func NewAccountRecord(id int64, card domain.CardNumber, gen domain.PINGenerator) (*domain.Account, error) {
	if card.AccountID() != id {
		return nil, fmt.Errorf("%w: card account identifier %d does not match %d",
			ErrInvalidEntity, card.AccountID(), id)
	}

	pin, err := gen()
	if err != nil {
		return nil, err
	}

	account, err := domain.NewAccount(card, pin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	return account, nil
}

// ValidateForSave checks the accounts handed to Save before any backend writes them.
func ValidateForSave(primary, secondary *domain.Account) error {
	if primary == nil {
		return fmt.Errorf("%w: primary account is required", ErrInvalidEntity)
	}
	for _, a := range []*domain.Account{primary, secondary} {
		if a == nil {
			continue
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
		}
	}
	return nil
}
