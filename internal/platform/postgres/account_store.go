package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/store"
)

// SequenceName is the row in account_sequence that backs NextAccountIdentifier.
const SequenceName = "LAST_ACCOUNT_IDENTIFIER"

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db     store.Querier
	conn   *sql.DB // nil when the store is scoped to a transaction
	opts   store.Options
	logger *slog.Logger
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the AccountStore interface.
// The connection pool is owned by the caller. If logger is nil, a default logger will be used.
func NewPostgresAccountStore(db *sql.DB, logger *slog.Logger, opts ...store.Option) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAccountStore{
		db:     db,
		conn:   db,
		opts:   store.ApplyOptions(opts...),
		logger: logger.With(slog.String("component", "account_store")),
	}
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// WithTx returns a store that runs every statement on tx. Reads made through
// it lock the selected rows until tx ends.
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) *PostgresAccountStore {
	return &PostgresAccountStore{
		db:     tx,
		opts:   s.opts,
		logger: s.logger,
	}
}

func (s *PostgresAccountStore) inTx() bool {
	return s.conn == nil
}

// NextAccountIdentifier implements store.AccountStore.NextAccountIdentifier.
// The single-row UPDATE takes a row lock, so concurrent callers are serialized
// by the database.
func (s *PostgresAccountStore) NextAccountIdentifier(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE account_sequence
		SET last_id = last_id + 1
		WHERE name = $1
		RETURNING last_id
	`

	var id int64
	if err := s.db.QueryRowContext(ctx, query, SequenceName).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Error("account sequence row is missing, have migrations run?")
			return 0, store.NewStoreError("sequence", "next", "sequence row missing",
				fmt.Errorf("%w: %s", store.ErrUnavailable, SequenceName))
		}
		log.Error("failed to advance account sequence", slog.String("error", err.Error()))
		return 0, store.NewStoreError("sequence", "next", "failed to advance sequence", MapError(err))
	}

	log.Debug("issued account identifier", slog.Int64("account_id", id))
	return id, nil
}

// CreateAccount implements store.AccountStore.CreateAccount.
// The primary key rejects duplicates; the violation is returned as store.ErrDuplicateAccount.
func (s *PostgresAccountStore) CreateAccount(
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

	query := `
		INSERT INTO accounts (id, number, pin, balance)
		VALUES ($1, $2, $3, $4)
	`
	_, err = s.db.ExecContext(ctx, query, account.ID, account.CardNumber(), account.PIN, account.Balance)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("account already exists", slog.Int64("account_id", id))
			return nil, fmt.Errorf("%w: %w", store.ErrDuplicateAccount, err)
		}
		log.Error("failed to create account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("account", "create", "insert failed", MapError(err))
	}

	log.Info("account created",
		slog.Int64("account_id", id),
		slog.String("card_number", domain.MaskCardNumber(account.CardNumber())))
	return account, nil
}

// Read implements store.AccountStore.Read.
// Inside a transaction the row is read with FOR UPDATE.
func (s *PostgresAccountStore) Read(ctx context.Context, id int64) (*domain.Account, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, number, pin, balance
		FROM accounts
		WHERE id = $1
	`
	if s.inTx() {
		query += "FOR UPDATE"
	}

	var (
		account domain.Account
		number  string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&account.ID, &number, &account.PIN, &account.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("account not found", slog.Int64("account_id", id))
			return nil, false, nil
		}
		log.Error("failed to read account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return nil, false, store.NewStoreError("account", "read", "select failed", MapError(err))
	}

	account.Card, err = domain.ParseCardNumber(number)
	if err != nil {
		log.Error("stored card number is corrupt", slog.Int64("account_id", id))
		return nil, false, store.NewStoreError("account", "read", "stored card number is corrupt", err)
	}

	return &account, true, nil
}

// Save implements store.AccountStore.Save.
// Two accounts are updated in one transaction unless the store is already scoped to one.
func (s *PostgresAccountStore) Save(ctx context.Context, primary, secondary *domain.Account) error {
	if err := store.ValidateForSave(primary, secondary); err != nil {
		return err
	}

	if secondary == nil || s.inTx() {
		return s.saveBalances(ctx, primary, secondary)
	}

	return store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).saveBalances(ctx, primary, secondary)
	}, store.WithErrorMapper(MapError))
}

func (s *PostgresAccountStore) saveBalances(ctx context.Context, accounts ...*domain.Account) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE accounts
		SET balance = $2
		WHERE id = $1
	`
	for _, a := range accounts {
		if a == nil {
			continue
		}

		result, err := s.db.ExecContext(ctx, query, a.ID, a.Balance)
		if err != nil {
			log.Error("failed to save account balance",
				slog.Int64("account_id", a.ID),
				slog.String("error", err.Error()))
			return store.NewStoreError("account", "save", "update failed", MapError(err))
		}

		if err := CheckRowsAffected(result, store.ErrAccountNotFound); err != nil {
			log.Debug("account to save not found", slog.Int64("account_id", a.ID))
			return err
		}
	}

	log.Debug("account balances saved")
	return nil
}

// Delete implements store.AccountStore.Delete.
func (s *PostgresAccountStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return store.NewStoreError("account", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrAccountNotFound); err != nil {
		log.Debug("account to delete not found", slog.Int64("account_id", id))
		return err
	}

	log.Info("account deleted", slog.Int64("account_id", id))
	return nil
}

// RunInTx implements store.AccountStore.RunInTx on a database transaction.
// Rows read through the scoped store stay locked until commit or rollback.
func (s *PostgresAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	if s.inTx() {
		return fn(ctx, s)
	}

	return store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	}, store.WithErrorMapper(MapError))
}
