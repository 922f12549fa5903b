package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/phrazzld/cardledger/internal/platform/postgres"
	"github.com/phrazzld/cardledger/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "accounts",
		ColumnName:     "balance",
		ConstraintName: "accounts_balance_non_negative",
	}
}

func newPqError(code string) *pq.Error {
	return &pq.Error{Code: pq.ErrorCode(code), Message: "error message", Constraint: "accounts_pkey"}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		wantIs error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"pgx unique violation", newPgError("23505"), store.ErrDuplicate},
		{"pq unique violation", newPqError("23505"), store.ErrDuplicate},
		{"pgx check violation", newPgError("23514"), store.ErrInvalidEntity},
		{"pq foreign key violation", newPqError("23503"), store.ErrInvalidEntity},
		{"pgx not null violation", newPgError("23502"), store.ErrInvalidEntity},
		{"pgx serialization failure", newPgError("40001"), store.ErrConflict},
		{"pq deadlock", newPqError("40P01"), store.ErrConflict},
		{"pgx lock not available", newPgError("55P03"), store.ErrConflict},
		{"unmapped sqlstate", newPgError("42P01"), store.ErrUnavailable},
		{"connection failure", errors.New("dial tcp: connection refused"), store.ErrUnavailable},
		{"context deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), store.ErrUnavailable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mapped := postgres.MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.wantIs)
			assert.ErrorIs(t, mapped, tc.err, "original error must stay in the chain")
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.False(t, postgres.IsUniqueViolation(errors.New("generic error")))
	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.True(t, postgres.IsUniqueViolation(newPqError("23505")))
	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("insert: %w", newPgError("23505"))))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
}

func TestIsConflict(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsConflict(newPgError("40001")))
	assert.True(t, postgres.IsConflict(newPqError("40P01")))
	assert.False(t, postgres.IsConflict(newPgError("23505")))
	assert.False(t, postgres.IsConflict(errors.New("generic error")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrAccountNotFound))

	err := postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, store.ErrAccountNotFound)
	assert.ErrorIs(t, err, store.ErrAccountNotFound)

	err = postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)

	resultErr := errors.New("rows affected unsupported")
	err = postgres.CheckRowsAffected(MockResult{err: resultErr}, store.ErrAccountNotFound)
	assert.ErrorIs(t, err, resultErr)

	assert.Error(t, postgres.CheckRowsAffected(nil, store.ErrAccountNotFound))
}
