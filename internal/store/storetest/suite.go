// Package storetest holds the behavioural contract every store.AccountStore
// backend must satisfy. Backend packages call RunAccountStoreSuite from their
// own tests so the memory, redis and postgres stores stay interchangeable.
package storetest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store whose sequence starts at zero.
type Factory func(t *testing.T) store.AccountStore

// RunAccountStoreSuite runs the shared contract against stores built by newStore.
func RunAccountStoreSuite(t *testing.T, newStore Factory) {
	t.Run("NextAccountIdentifier increments from one", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for want := int64(1); want <= 3; want++ {
			got, err := s.NextAccountIdentifier(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("NextAccountIdentifier is unique under concurrency", func(t *testing.T) {
		s := newStore(t)
		const n = 40

		ids := make([]int64, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i], errs[i] = s.NextAccountIdentifier(context.Background())
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		for i, id := range ids {
			assert.Equal(t, int64(i+1), id, "identifiers must be contiguous with no repeats")
		}
	})

	t.Run("CreateAccount then Read", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created := MustCreate(t, s)

		got, found, err := s.Read(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Card, got.Card)
		assert.Equal(t, created.PIN, got.PIN)
		assert.Zero(t, got.Balance)
		assert.NoError(t, domain.ValidatePIN(got.PIN))
	})

	t.Run("CreateAccount rejects duplicate key", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created := MustCreate(t, s)

		_, err := s.CreateAccount(ctx, created.ID, created.Card)
		assert.ErrorIs(t, err, store.ErrDuplicateAccount)
		assert.True(t, store.IsDuplicateError(err))
	})

	t.Run("CreateAccount rejects mismatched identifier", func(t *testing.T) {
		s := newStore(t)
		card := MustCard(t, 7)

		_, err := s.CreateAccount(context.Background(), 8, card)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("Read missing account is not an error", func(t *testing.T) {
		s := newStore(t)

		got, found, err := s.Read(context.Background(), 424242)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("Save persists one and two accounts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := MustCreate(t, s)
		b := MustCreate(t, s)

		a.Balance = 100
		require.NoError(t, s.Save(ctx, a, nil))
		AssertBalance(t, s, a.ID, 100)

		a.Balance = 70
		b.Balance = 30
		require.NoError(t, s.Save(ctx, a, b))
		AssertBalance(t, s, a.ID, 70)
		AssertBalance(t, s, b.ID, 30)
	})

	t.Run("Save with a missing account writes nothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := MustCreate(t, s)
		ghost := &domain.Account{ID: 999, Card: MustCard(t, 999), PIN: "1234", Balance: 5}

		a.Balance = 50
		err := s.Save(ctx, a, ghost)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
		AssertBalance(t, s, a.ID, 0)
	})

	t.Run("Save rejects a negative balance", func(t *testing.T) {
		s := newStore(t)

		a := MustCreate(t, s)
		a.Balance = -1
		assert.ErrorIs(t, s.Save(context.Background(), a, nil), store.ErrInvalidEntity)
		AssertBalance(t, s, a.ID, 0)
	})

	t.Run("Delete removes the account and never reuses its identifier", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		a := MustCreate(t, s)
		require.NoError(t, s.Delete(ctx, a.ID))

		_, found, err := s.Read(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, found)

		next, err := s.NextAccountIdentifier(ctx)
		require.NoError(t, err)
		assert.Greater(t, next, a.ID)
	})

	t.Run("Delete missing account", func(t *testing.T) {
		s := newStore(t)

		err := s.Delete(context.Background(), 31337)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	t.Run("RunInTx propagates the function error", func(t *testing.T) {
		s := newStore(t)
		sentinel := errors.New("abort")

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.AccountStore) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("RunInTx nests inline", func(t *testing.T) {
		s := newStore(t)
		a := MustCreate(t, s)

		err := s.RunInTx(context.Background(), func(ctx context.Context, tx store.AccountStore) error {
			return tx.RunInTx(ctx, func(ctx context.Context, inner store.AccountStore) error {
				acct, found, err := inner.Read(ctx, a.ID)
				if err != nil || !found {
					return errors.New("account should be visible inside nested unit")
				}
				acct.Balance = 11
				return inner.Save(ctx, acct, nil)
			})
		})
		require.NoError(t, err)
		AssertBalance(t, s, a.ID, 11)
	})

	t.Run("RunInTx prevents lost updates", func(t *testing.T) {
		s := newStore(t)
		a := MustCreate(t, s)
		const workers = 12

		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = s.RunInTx(context.Background(), func(ctx context.Context, tx store.AccountStore) error {
					acct, found, err := tx.Read(ctx, a.ID)
					if err != nil {
						return err
					}
					if !found {
						return store.ErrAccountNotFound
					}
					acct.Balance++
					return tx.Save(ctx, acct, nil)
				})
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		AssertBalance(t, s, a.ID, workers)
	})
}

// MustCard builds the card number for id.
func MustCard(t *testing.T, id int64) domain.CardNumber {
	t.Helper()
	card, err := domain.NewCardNumber(id)
	require.NoError(t, err)
	return card
}

// MustCreate issues the next identifier and creates its account.
func MustCreate(t *testing.T, s store.AccountStore) *domain.Account {
	t.Helper()
	ctx := context.Background()

	id, err := s.NextAccountIdentifier(ctx)
	require.NoError(t, err)

	account, err := s.CreateAccount(ctx, id, MustCard(t, id))
	require.NoError(t, err)
	return account
}

// AssertBalance reads id and compares its balance.
func AssertBalance(t *testing.T, s store.AccountStore, id, want int64) {
	t.Helper()

	got, found, err := s.Read(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found, "account %d should exist", id)
	assert.Equal(t, want, got.Balance, "balance of account %d", id)
}
