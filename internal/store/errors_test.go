package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantNotFound  bool
		wantDuplicate bool
	}{
		{name: "nil error"},
		{name: "generic error", err: errors.New("some error")},
		{name: "ErrNotFound", err: ErrNotFound, wantNotFound: true},
		{name: "ErrAccountNotFound", err: ErrAccountNotFound, wantNotFound: true},
		{
			name:         "wrapped ErrAccountNotFound",
			err:          fmt.Errorf("failed to delete account: %w", ErrAccountNotFound),
			wantNotFound: true,
		},
		{name: "ErrDuplicate", err: ErrDuplicate, wantDuplicate: true},
		{name: "ErrDuplicateAccount", err: ErrDuplicateAccount, wantDuplicate: true},
		{
			name:          "StoreError wrapping ErrDuplicateAccount",
			err:           NewStoreError("account", "create", "key exists", ErrDuplicateAccount),
			wantDuplicate: true,
		},
		{name: "ErrConflict", err: ErrConflict},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.wantNotFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.wantDuplicate, IsDuplicateError(tc.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("account", "save", "failed to update balance", cause)

	assert.Equal(t,
		"save operation on account failed: failed to update balance: connection reset",
		err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("sequence", "next", "counter row missing", nil)
	assert.Equal(t, "next operation on sequence failed: counter row missing", bare.Error())
	assert.Nil(t, bare.Unwrap())

	var storeErr *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &storeErr))
	assert.Equal(t, "account", storeErr.Entity)
}
