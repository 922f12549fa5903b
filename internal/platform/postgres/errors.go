package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/phrazzld/cardledger/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	checkViolationCode       = "23514"
	notNullViolationCode     = "23502"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
	lockNotAvailableCode     = "55P03"
)

// pgError holds the fields shared by pgconn.PgError and pq.Error.
type pgError struct {
	code       string
	constraint string
	column     string
}

// asPgError extracts the SQLSTATE from either driver's error type.
func asPgError(err error) (pgError, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgError{code: pgxErr.Code, constraint: pgxErr.ConstraintName, column: pgxErr.ColumnName}, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgError{code: string(pqErr.Code), constraint: pqErr.Constraint, column: pqErr.Column}, true
	}
	return pgError{}, false
}

// MapError maps a database error to the store sentinel it represents, keeping
// the original error in the chain. Errors without a specific mapping are
// treated as the storage medium being unavailable.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	if IsConflict(err) {
		return fmt.Errorf("%w: %w", store.ErrConflict, err)
	}

	if pgErr, ok := asPgError(err); ok {
		switch pgErr.code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		case foreignKeyViolationCode, checkViolationCode:
			return fmt.Errorf("%w: constraint violation (%s): %w", store.ErrInvalidEntity, pgErr.constraint, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %w", store.ErrInvalidEntity, pgErr.column, err)
		}
	}

	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}

// IsUniqueViolation checks if the given error is a unique constraint violation from either driver.
func IsUniqueViolation(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.code == uniqueViolationCode
}

// IsConflict reports whether err is a serialization failure, deadlock or lock timeout.
func IsConflict(err error) bool {
	pgErr, ok := asPgError(err)
	if !ok {
		return false
	}
	switch pgErr.code {
	case serializationFailureCode, deadlockDetectedCode, lockNotAvailableCode:
		return true
	}
	return false
}

// CheckRowsAffected examines the number of rows affected by a database operation.
// If no rows were affected it returns notFound, or store.ErrNotFound when notFound is nil.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
