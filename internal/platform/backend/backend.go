package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/cardledger/internal/config"
	"github.com/phrazzld/cardledger/internal/events"
	"github.com/phrazzld/cardledger/internal/platform/memory"
	"github.com/phrazzld/cardledger/internal/platform/postgres"
	ledgerredis "github.com/phrazzld/cardledger/internal/platform/redis"
	"github.com/phrazzld/cardledger/internal/store"
)

// Backend holds the account store and the connections behind it.
type Backend struct {
	Accounts store.AccountStore

	// DB is set for the postgres backend.
	DB *sql.DB
	// Redis is set for the redis backend and whenever events go to a stream.
	Redis *ledgerredis.Client

	logger *slog.Logger
}

// Open connects the configured backend. The postgres backend has its schema
// migrated up before use.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...store.Option) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Backend{logger: logger}

	needRedis := cfg.Store.Backend == config.BackendRedis || cfg.Events.RedisStream != ""
	if needRedis {
		client, err := ledgerredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.Redis = client
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.Accounts = memory.NewMemoryAccountStore(logger, opts...)

	case config.BackendPostgres:
		db, err := OpenDatabase(ctx, cfg.Database, logger)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.DB = db
		if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		b.Accounts = postgres.NewPostgresAccountStore(db, logger, opts...)

	case config.BackendRedis:
		b.Accounts = ledgerredis.NewRedisAccountStore(
			b.Redis,
			cfg.Redis.KeyPrefix,
			time.Duration(cfg.Redis.LockExpirySeconds)*time.Second,
			logger,
			opts...,
		)

	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	logger.Info("account store ready", slog.String("backend", cfg.Store.Backend))
	return b, nil
}

// NewEmitter builds the emitter for ledger events: an audit log line for
// every event, plus a Redis stream entry when a stream is configured.
func (b *Backend) NewEmitter(cfg config.EventsConfig) *events.InMemoryEventEmitter {
	emitter := events.NewInMemoryEventEmitter(b.logger)
	emitter.RegisterHandler(events.NewLoggingHandler(b.logger))

	if cfg.RedisStream != "" && b.Redis != nil {
		emitter.RegisterHandler(events.NewRedisStreamPublisher(b.Redis, cfg.RedisStream))
		b.logger.Info("publishing ledger events", slog.String("stream", cfg.RedisStream))
	}
	return emitter
}

// Close releases every open connection.
func (b *Backend) Close() error {
	var errs []error
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
