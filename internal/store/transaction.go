package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardledger/internal/platform/logger"
)

// TxFn is the unit of work handed to RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxOption configures RunInTransaction.
type TxOption func(*txOptions)

type txOptions struct {
	mapErr func(error) error
}

// WithErrorMapper classifies begin and commit failures with the backend's
// driver-aware mapper instead of the generic ErrUnavailable and
// ErrTransactionFailed wrapping.
func WithErrorMapper(mapErr func(error) error) TxOption {
	return func(o *txOptions) { o.mapErr = mapErr }
}

// RunInTransaction runs fn inside a transaction on db. A nil return commits;
// an error or a panic rolls back. Errors from fn come back as-is so that
// sentinel checks keep working for the caller.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn, opts ...TxOption) (err error) {
	log := logger.FromContext(ctx)

	var o txOptions
	for _, opt := range opts {
		opt(&o)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("could not open transaction", slog.String("error", err.Error()))
		if o.mapErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", o.mapErr(err))
		}
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrUnavailable, err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		rbErr := tx.Rollback()
		log.Error("transaction aborted by panic",
			slog.Any("panic", p),
			slog.Any("rollback_error", rbErr))
		// ALLOW-PANIC: re-raise after rollback
		panic(p)
	}()

	if fnErr := fn(ctx, tx); fnErr != nil {
		rbErr := tx.Rollback()
		if rbErr == nil {
			log.Debug("transaction rolled back", slog.String("cause", fnErr.Error()))
			return fnErr
		}
		log.Error("rollback failed",
			slog.String("rollback_error", rbErr.Error()),
			slog.String("cause", fnErr.Error()))
		return fmt.Errorf("error rolling back transaction: %v (cause: %w)", rbErr, fnErr)
	}

	if cErr := tx.Commit(); cErr != nil {
		log.Error("commit failed", slog.String("error", cErr.Error()))
		if o.mapErr != nil {
			return fmt.Errorf("failed to commit transaction: %w", o.mapErr(cErr))
		}
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, cErr)
	}
	return nil
}
