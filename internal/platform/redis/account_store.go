package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/redis/go-redis/v9"
)

// Lock acquisition settings for units of work.
const (
	DefaultLockExpiry = 8 * time.Second
	lockTries         = 200
	lockRetryDelay    = 25 * time.Millisecond
)

// accountRecord is the hash layout of a stored account.
type accountRecord struct {
	Number  string `redis:"number"`
	PIN     string `redis:"pin"`
	Balance int64  `redis:"balance"`
}

// RedisAccountStore implements the store.AccountStore interface on Redis.
//
// Writes made outside RunInTx are atomic on their own but are not serialized
// against units of work; read-modify-write sequences belong in RunInTx.
type RedisAccountStore struct {
	client     redis.UniversalClient
	rs         *redsync.Redsync
	keyPrefix  string
	lockExpiry time.Duration
	locked     bool // true for the store handed to a unit of work
	opts       store.Options
	logger     *slog.Logger
}

// NewRedisAccountStore creates a store that keeps its keys under keyPrefix.
// A non-positive lockExpiry selects DefaultLockExpiry. If logger is nil, a
// default logger will be used.
func NewRedisAccountStore(
	client redis.UniversalClient,
	keyPrefix string,
	lockExpiry time.Duration,
	logger *slog.Logger,
	opts ...store.Option,
) *RedisAccountStore {
	if client == nil {
		panic("redis client cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if lockExpiry <= 0 {
		lockExpiry = DefaultLockExpiry
	}

	return &RedisAccountStore{
		client:     client,
		rs:         redsync.New(goredis.NewPool(client)),
		keyPrefix:  keyPrefix,
		lockExpiry: lockExpiry,
		opts:       store.ApplyOptions(opts...),
		logger:     logger.With(slog.String("component", "redis_account_store")),
	}
}

// Ensure RedisAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*RedisAccountStore)(nil)

func (s *RedisAccountStore) accountKey(id int64) string {
	return fmt.Sprintf("%s:account:%d", s.keyPrefix, id)
}

func (s *RedisAccountStore) sequenceKey() string {
	return s.keyPrefix + ":account:last_id"
}

func (s *RedisAccountStore) lockKey() string {
	return s.keyPrefix + ":lock:accounts"
}

// NextAccountIdentifier implements store.AccountStore.NextAccountIdentifier.
func (s *RedisAccountStore) NextAccountIdentifier(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	id, err := s.client.Incr(ctx, s.sequenceKey()).Result()
	if err != nil {
		log.Error("failed to advance account sequence", slog.String("error", err.Error()))
		return 0, store.NewStoreError("sequence", "next", "failed to advance sequence", MapError(err))
	}

	log.Debug("issued account identifier", slog.Int64("account_id", id))
	return id, nil
}

// CreateAccount implements store.AccountStore.CreateAccount.
func (s *RedisAccountStore) CreateAccount(
	ctx context.Context,
	id int64,
	card domain.CardNumber,
) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	account, err := store.NewAccountRecord(id, card, s.opts.PINGenerator)
	if err != nil {
		log.Warn("account validation failed during create",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return nil, err
	}

	key := s.accountKey(id)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return store.ErrDuplicateAccount
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key,
				"number", account.CardNumber(),
				"pin", account.PIN,
				"balance", account.Balance)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAccount) {
			log.Warn("account already exists", slog.Int64("account_id", id))
			return nil, err
		}
		log.Error("failed to create account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("account", "create", "write failed", MapError(err))
	}

	log.Info("account created",
		slog.Int64("account_id", id),
		slog.String("card_number", domain.MaskCardNumber(account.CardNumber())))
	return account, nil
}

// Read implements store.AccountStore.Read.
func (s *RedisAccountStore) Read(ctx context.Context, id int64) (*domain.Account, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cmd := s.client.HGetAll(ctx, s.accountKey(id))
	fields, err := cmd.Result()
	if err != nil {
		log.Error("failed to read account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return nil, false, store.NewStoreError("account", "read", "read failed", MapError(err))
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	var rec accountRecord
	if err := cmd.Scan(&rec); err != nil {
		log.Error("stored account is corrupt", slog.Int64("account_id", id))
		return nil, false, store.NewStoreError("account", "read", "stored account is corrupt", err)
	}

	card, err := domain.ParseCardNumber(rec.Number)
	if err != nil {
		log.Error("stored card number is corrupt", slog.Int64("account_id", id))
		return nil, false, store.NewStoreError("account", "read", "stored card number is corrupt", err)
	}

	return &domain.Account{ID: id, Card: card, PIN: rec.PIN, Balance: rec.Balance}, true, nil
}

// Save implements store.AccountStore.Save. Both keys are watched and checked
// before either balance is written.
func (s *RedisAccountStore) Save(ctx context.Context, primary, secondary *domain.Account) error {
	if err := store.ValidateForSave(primary, secondary); err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	updates := []*domain.Account{primary}
	if secondary != nil {
		updates = append(updates, secondary)
	}
	keys := make([]string, len(updates))
	for i, a := range updates {
		keys[i] = s.accountKey(a.ID)
	}

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, keys...).Result()
		if err != nil {
			return err
		}
		if n != int64(len(keys)) {
			return store.ErrAccountNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, a := range updates {
				pipe.HSet(ctx, keys[i], "balance", a.Balance)
			}
			return nil
		})
		return err
	}, keys...)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			log.Debug("account to save not found", slog.Int64("primary_id", primary.ID))
			return err
		}
		log.Error("failed to save account balances",
			slog.Int64("primary_id", primary.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("account", "save", "write failed", MapError(err))
	}

	log.Debug("accounts saved",
		slog.Int64("primary_id", primary.ID),
		slog.Int("account_count", len(updates)))
	return nil
}

// Delete implements store.AccountStore.Delete.
func (s *RedisAccountStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	n, err := s.client.Del(ctx, s.accountKey(id)).Result()
	if err != nil {
		log.Error("failed to delete account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("account", "delete", "delete failed", MapError(err))
	}
	if n == 0 {
		return store.ErrAccountNotFound
	}

	log.Info("account deleted", slog.Int64("account_id", id))
	return nil
}

// RunInTx implements store.AccountStore.RunInTx by holding the account lock
// for the duration of fn. The store handed to fn runs nested units inline.
func (s *RedisAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	if s.locked {
		return fn(ctx, s)
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	mutex := s.rs.NewMutex(
		s.lockKey(),
		redsync.WithExpiry(s.lockExpiry),
		redsync.WithTries(lockTries),
		redsync.WithRetryDelay(lockRetryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		log.Error("failed to acquire account lock", slog.String("error", err.Error()))
		return store.NewStoreError("account", "lock", "failed to acquire lock", MapError(err))
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			log.Warn("failed to release account lock",
				slog.Bool("released", ok),
				slog.Any("error", err))
		}
	}()

	scoped := *s
	scoped.locked = true
	return fn(ctx, &scoped)
}
