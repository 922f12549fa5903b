package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/mocks"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(f *fixture) *service.SessionRegistry {
	return service.NewSessionRegistry(f.ledger, nil)
}

func TestSessionRegistryOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, 15)
	registry := newRegistry(f)

	id, account, err := registry.Open(ctx, a.CardNumber(), a.PIN)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, a.ID, account.ID)
	assert.Equal(t, 1, registry.Len())

	ledger, err := registry.Get(id)
	require.NoError(t, err)
	balance, err := ledger.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)
}

func TestSessionRegistryRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, 0)
	registry := newRegistry(f)

	_, _, err := registry.Open(context.Background(), a.CardNumber(), "nope")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Zero(t, registry.Len())
}

func TestSessionRegistryPropagatesStorageFailure(t *testing.T) {
	registry := service.NewSessionRegistry(func() service.LedgerService {
		return service.NewLedgerService(&mocks.MockAccountStore{Err: store.ErrUnavailable}, nil, nil)
	}, nil)

	_, _, err := registry.Open(context.Background(), "4000000000000010", "1234")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestSessionRegistryClose(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, 0)
	registry := newRegistry(f)

	id, _, err := registry.Open(context.Background(), a.CardNumber(), a.PIN)
	require.NoError(t, err)
	ledger, err := registry.Get(id)
	require.NoError(t, err)

	registry.Close(id)
	registry.Close(id)

	_, err = registry.Get(id)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	_, loggedIn := ledger.Current()
	assert.False(t, loggedIn, "closing a session logs its ledger out")
}

func TestSessionRegistryDropsLoggedOutSessions(t *testing.T) {
	mock := &mocks.MockLedgerService{Account: &domain.Account{ID: 3}}
	registry := service.NewSessionRegistry(func() service.LedgerService { return mock }, nil)

	id, _, err := registry.Open(context.Background(), "4000000000000036", "1234")
	require.NoError(t, err)

	mock.Logout()
	_, err = registry.Get(id)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	assert.Zero(t, registry.Len())
}

func TestSessionRegistryUnknownSession(t *testing.T) {
	registry := newRegistry(newFixture(t))
	_, err := registry.Get(uuid.New())
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSessionRegistryExpiresSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, 0)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	registry := service.NewSessionRegistry(f.ledger, nil,
		service.WithSessionLifetime(15*time.Minute),
		service.WithClock(clock.Now))

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		id, _, err := registry.Open(ctx, a.CardNumber(), a.PIN)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, 5, registry.Len())

	clock.Advance(14 * time.Minute)
	ledger, err := registry.Get(ids[0])
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = registry.Get(ids[0])
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
	_, loggedIn := ledger.Current()
	assert.False(t, loggedIn, "an expired session is logged out")
	assert.Equal(t, 4, registry.Len())

	// Logging in again sweeps the remaining expired entries.
	fresh, _, err := registry.Open(ctx, a.CardNumber(), a.PIN)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())

	_, err = registry.Get(fresh)
	assert.NoError(t, err)
}

func TestSessionRegistryBoundedUnderRepeatedLogins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, 0)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	registry := service.NewSessionRegistry(f.ledger, nil,
		service.WithSessionLifetime(10*time.Minute),
		service.WithClock(clock.Now))

	for i := 0; i < 200; i++ {
		_, _, err := registry.Open(ctx, a.CardNumber(), a.PIN)
		require.NoError(t, err)
		clock.Advance(30 * time.Second)
	}
	// 20 logins fit in one lifetime; the sweep lags by at most one interval.
	assert.LessOrEqual(t, registry.Len(), 22)
}

func TestSessionRegistrySweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.account(t, 0)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	registry := service.NewSessionRegistry(f.ledger, nil,
		service.WithSessionLifetime(time.Minute),
		service.WithClock(clock.Now))

	_, _, err := registry.Open(ctx, a.CardNumber(), a.PIN)
	require.NoError(t, err)
	_, _, err = registry.Open(ctx, a.CardNumber(), a.PIN)
	require.NoError(t, err)

	assert.Zero(t, registry.Sweep())
	clock.Advance(time.Minute)
	assert.Equal(t, 2, registry.Sweep())
	assert.Zero(t, registry.Len())
}
