package store

import (
	"context"

	"github.com/phrazzld/cardledger/internal/domain"
)

// AccountTxFn is a unit of work run by AccountStore.RunInTx. The store passed
// to it is scoped to the unit of work and must not be retained.
type AccountTxFn func(ctx context.Context, tx AccountStore) error

// AccountStore defines the interface for account persistence.
// The memory, postgres and redis backends implement it identically, so callers
// never need to know which one is active.
type AccountStore interface {
	// NextAccountIdentifier atomically increments the persisted sequence and
	// returns the new value. Two calls never return the same value, and values
	// are not reused after the account they named is deleted.
	NextAccountIdentifier(ctx context.Context) (int64, error)

	// CreateAccount generates a PIN and stores a zero-balance account keyed by
	// the card's account identifier. id must equal card.AccountID().
	// Returns ErrDuplicateAccount if the key is already present.
	CreateAccount(ctx context.Context, id int64, card domain.CardNumber) (*domain.Account, error)

	// Read returns the account stored under id. A missing key is reported as
	// (nil, false, nil); only storage faults produce an error.
	Read(ctx context.Context, id int64) (*domain.Account, bool, error)

	// Save persists the balance of primary and, when non-nil, secondary as one
	// atomic write: both updates become visible together or not at all.
	// Returns ErrAccountNotFound if either account no longer exists.
	Save(ctx context.Context, primary, secondary *domain.Account) error

	// Delete removes the account permanently.
	// Returns ErrAccountNotFound if the account does not exist.
	Delete(ctx context.Context, id int64) error

	// RunInTx runs fn as a single unit of work. Reads made through the store
	// handed to fn are protected against concurrent writers until fn returns,
	// so read-check-write sequences cannot lose updates. Calling RunInTx on a
	// store that is already scoped to a unit of work runs fn inline.
	RunInTx(ctx context.Context, fn AccountTxFn) error
}
