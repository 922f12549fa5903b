package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	ledgerredis "github.com/phrazzld/cardledger/internal/platform/redis"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/phrazzld/cardledger/internal/store/storetest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrefix = "test"

func newTestStore(t *testing.T, opts ...store.Option) (*ledgerredis.RedisAccountStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, _ := logger.NewTestLogger()
	return ledgerredis.NewRedisAccountStore(client, testPrefix, 0, l, opts...), mr
}

func TestRedisAccountStoreContract(t *testing.T) {
	storetest.RunAccountStoreSuite(t, func(t *testing.T) store.AccountStore {
		s, _ := newTestStore(t)
		return s
	})
}

func TestRedisKeyLayout(t *testing.T) {
	s, mr := newTestStore(t, store.WithPINGenerator(func() (string, error) { return "1234", nil }))
	ctx := context.Background()

	id, err := s.NextAccountIdentifier(ctx)
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, id, storetest.MustCard(t, id))
	require.NoError(t, err)

	seq, err := mr.Get("test:account:last_id")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)

	assert.Equal(t, "4000000000000010", mr.HGet("test:account:1", "number"))
	assert.Equal(t, "1234", mr.HGet("test:account:1", "pin"))
	assert.Equal(t, "0", mr.HGet("test:account:1", "balance"))
}

func TestRedisReadCorruptRecord(t *testing.T) {
	t.Run("card number", func(t *testing.T) {
		s, mr := newTestStore(t)
		mr.HSet("test:account:5", "number", "4000", "pin", "1234", "balance", "0")

		_, found, err := s.Read(context.Background(), 5)
		assert.False(t, found)
		assert.ErrorIs(t, err, domain.ErrMalformedCardNumber)
	})

	t.Run("balance", func(t *testing.T) {
		s, mr := newTestStore(t)
		mr.HSet("test:account:5", "number", "4000000000000051", "pin", "1234", "balance", "lots")

		_, found, err := s.Read(context.Background(), 5)
		assert.False(t, found)
		assert.Error(t, err)
	})
}

func TestRedisUnavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()
	ctx := context.Background()

	_, err := s.NextAccountIdentifier(ctx)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	_, _, err = s.Read(ctx, 1)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	err = s.Delete(ctx, 1)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestRedisRunInTxReleasesLock(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		assert.True(t, mr.Exists("test:lock:accounts"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:accounts"))

	err = s.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists("test:lock:accounts"))
}

func TestNewRedisAccountStorePanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { ledgerredis.NewRedisAccountStore(nil, testPrefix, 0, nil) })
}
