package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCard(t *testing.T, id int64) CardNumber {
	t.Helper()
	card, err := NewCardNumber(id)
	require.NoError(t, err)
	return card
}

func TestNewAccount(t *testing.T) {
	t.Parallel()

	account, err := NewAccount(mustCard(t, 12), "0042")
	require.NoError(t, err)
	assert.Equal(t, int64(12), account.ID)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, "0042", account.PIN)
	assert.Equal(t, "4000000000000127", account.CardNumber())
}

func TestAccountValidate(t *testing.T) {
	t.Parallel()

	card := mustCard(t, 3)

	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{"valid", Account{ID: 3, Card: card, PIN: "1234", Balance: 10}, nil},
		{"empty card", Account{ID: 3, PIN: "1234"}, ErrValidation},
		{"mismatched id", Account{ID: 4, Card: card, PIN: "1234"}, ErrValidation},
		{"short pin", Account{ID: 3, Card: card, PIN: "123"}, ErrInvalidPIN},
		{"non numeric pin", Account{ID: 3, Card: card, PIN: "12a4"}, ErrInvalidPIN},
		{"negative balance", Account{ID: 3, Card: card, PIN: "1234", Balance: -1}, ErrNegativeBalance},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.account.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestAccountDepositWithdraw(t *testing.T) {
	t.Parallel()

	account, err := NewAccount(mustCard(t, 1), "1111")
	require.NoError(t, err)

	require.NoError(t, account.Deposit(100))
	assert.ErrorIs(t, account.Deposit(-1), ErrInvalidAmount)
	require.NoError(t, account.Withdraw(30))
	assert.Equal(t, int64(70), account.Balance)

	assert.ErrorIs(t, account.Withdraw(71), ErrNegativeBalance)
	assert.ErrorIs(t, account.Withdraw(-5), ErrInvalidAmount)
	assert.Equal(t, int64(70), account.Balance)
}

func TestAccountClone(t *testing.T) {
	t.Parallel()

	account, err := NewAccount(mustCard(t, 1), "1111")
	require.NoError(t, err)

	clone := account.Clone()
	clone.Balance = 500
	assert.Equal(t, int64(0), account.Balance)

	var nilAccount *Account
	assert.Nil(t, nilAccount.Clone())
}

func TestGeneratePIN(t *testing.T) {
	t.Parallel()

	for i := 0; i < 500; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		require.NoError(t, ValidatePIN(pin))
		assert.NotEqual(t, "0000", pin)
	}
}
