package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/service"
)

// MockLedgerService implements service.LedgerService for testing.
// Methods without an Fn override return the default values below.
type MockLedgerService struct {
	AuthenticateFn  func(ctx context.Context, cardNumber, pin string) error
	CreateAccountFn func(ctx context.Context) (*domain.Account, error)
	BalanceFn       func(ctx context.Context) (int64, error)
	DepositFn       func(ctx context.Context, amount int64) error
	TransferFn      func(ctx context.Context, cardNumber string, amount int64) (service.TransferOutcome, error)
	ExistsFn        func(ctx context.Context, cardNumber string) (bool, error)
	CloseSessionFn  func(ctx context.Context) error

	// Account is the session account; nil means logged out.
	Account *domain.Account
	Outcome service.TransferOutcome
	Found   bool
	Err     error

	mu sync.Mutex
}

// Ensure MockLedgerService implements service.LedgerService
var _ service.LedgerService = (*MockLedgerService)(nil)

// Authenticate implements service.LedgerService.
func (m *MockLedgerService) Authenticate(ctx context.Context, cardNumber, pin string) error {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, cardNumber, pin)
	}
	return m.Err
}

// Logout implements service.LedgerService.
func (m *MockLedgerService) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Account = nil
}

// Current implements service.LedgerService.
func (m *MockLedgerService) Current() (*domain.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Account == nil {
		return nil, false
	}
	return m.Account.Clone(), true
}

// CreateAccount implements service.LedgerService.
func (m *MockLedgerService) CreateAccount(ctx context.Context) (*domain.Account, error) {
	if m.CreateAccountFn != nil {
		return m.CreateAccountFn(ctx)
	}
	return m.Account.Clone(), m.Err
}

// Balance implements service.LedgerService.
func (m *MockLedgerService) Balance(ctx context.Context) (int64, error) {
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx)
	}
	if m.Err != nil || m.Account == nil {
		return 0, m.Err
	}
	return m.Account.Balance, nil
}

// Deposit implements service.LedgerService.
func (m *MockLedgerService) Deposit(ctx context.Context, amount int64) error {
	if m.DepositFn != nil {
		return m.DepositFn(ctx, amount)
	}
	return m.Err
}

// Transfer implements service.LedgerService.
func (m *MockLedgerService) Transfer(ctx context.Context, cardNumber string, amount int64) (service.TransferOutcome, error) {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, cardNumber, amount)
	}
	return m.Outcome, m.Err
}

// Exists implements service.LedgerService.
func (m *MockLedgerService) Exists(ctx context.Context, cardNumber string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, cardNumber)
	}
	return m.Found, m.Err
}

// CloseSession implements service.LedgerService.
func (m *MockLedgerService) CloseSession(ctx context.Context) error {
	if m.CloseSessionFn != nil {
		return m.CloseSessionFn(ctx)
	}
	return m.Err
}
