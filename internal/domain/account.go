package domain

import "fmt"

// Account is a ledger account addressed by its card number.
// Only Balance changes after creation.
type Account struct {
	ID      int64      `json:"id"`
	Card    CardNumber `json:"-"`
	PIN     string     `json:"-"` // never serialized
	Balance int64      `json:"balance"`
}

// NewAccount creates an Account with a zero balance for card.
// Returns an error if validation fails.
func NewAccount(card CardNumber, pin string) (*Account, error) {
	account := &Account{
		ID:   card.AccountID(),
		Card: card,
		PIN:  pin,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
func (a *Account) Validate() error {
	if a.Card.IsZero() {
		return NewValidationError("card", "cannot be empty", ErrValidation)
	}
	if a.Card.AccountID() != a.ID {
		return NewValidationError(
			"card",
			fmt.Sprintf("account identifier %d does not match account %d", a.Card.AccountID(), a.ID),
			ErrValidation,
		)
	}
	if err := ValidatePIN(a.PIN); err != nil {
		return NewValidationError("pin", "must be 4 digits", err)
	}
	if a.Balance < 0 {
		return NewValidationError("balance", "cannot be negative", ErrNegativeBalance)
	}
	return nil
}

// CardNumber returns the formatted 16-digit card number.
func (a *Account) CardNumber() string {
	return a.Card.String()
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	a.Balance += amount
	return nil
}

// Withdraw subtracts amount from the balance, refusing to go below zero.
func (a *Account) Withdraw(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if a.Balance < amount {
		return ErrNegativeBalance
	}
	a.Balance -= amount
	return nil
}

// Clone returns a copy that can be mutated without affecting a.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
