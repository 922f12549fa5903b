package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/store"
)

// MockAccountStore implements store.AccountStore for testing.
//
// Each method uses its Fn field when set, then Base when set, and otherwise
// returns Err. RunInTx without RunInTxFn calls fn with the mock itself and
// gives no isolation.
type MockAccountStore struct {
	NextAccountIdentifierFn func(ctx context.Context) (int64, error)
	CreateAccountFn         func(ctx context.Context, id int64, card domain.CardNumber) (*domain.Account, error)
	ReadFn                  func(ctx context.Context, id int64) (*domain.Account, bool, error)
	SaveFn                  func(ctx context.Context, primary, secondary *domain.Account) error
	DeleteFn                func(ctx context.Context, id int64) error
	RunInTxFn               func(ctx context.Context, fn store.AccountTxFn) error

	// Base handles every call without an Fn override.
	Base store.AccountStore

	// Err is returned by methods with neither an Fn override nor a Base.
	Err error

	mu    sync.Mutex
	calls map[string]int
}

// Ensure MockAccountStore implements store.AccountStore
var _ store.AccountStore = (*MockAccountStore)(nil)

func (m *MockAccountStore) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

// Calls returns how many times method was called.
func (m *MockAccountStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// NextAccountIdentifier implements store.AccountStore.
func (m *MockAccountStore) NextAccountIdentifier(ctx context.Context) (int64, error) {
	m.record("NextAccountIdentifier")
	switch {
	case m.NextAccountIdentifierFn != nil:
		return m.NextAccountIdentifierFn(ctx)
	case m.Base != nil:
		return m.Base.NextAccountIdentifier(ctx)
	}
	return 0, m.Err
}

// CreateAccount implements store.AccountStore.
func (m *MockAccountStore) CreateAccount(ctx context.Context, id int64, card domain.CardNumber) (*domain.Account, error) {
	m.record("CreateAccount")
	switch {
	case m.CreateAccountFn != nil:
		return m.CreateAccountFn(ctx, id, card)
	case m.Base != nil:
		return m.Base.CreateAccount(ctx, id, card)
	}
	return nil, m.Err
}

// Read implements store.AccountStore.
func (m *MockAccountStore) Read(ctx context.Context, id int64) (*domain.Account, bool, error) {
	m.record("Read")
	switch {
	case m.ReadFn != nil:
		return m.ReadFn(ctx, id)
	case m.Base != nil:
		return m.Base.Read(ctx, id)
	}
	return nil, false, m.Err
}

// Save implements store.AccountStore.
func (m *MockAccountStore) Save(ctx context.Context, primary, secondary *domain.Account) error {
	m.record("Save")
	switch {
	case m.SaveFn != nil:
		return m.SaveFn(ctx, primary, secondary)
	case m.Base != nil:
		return m.Base.Save(ctx, primary, secondary)
	}
	return m.Err
}

// Delete implements store.AccountStore.
func (m *MockAccountStore) Delete(ctx context.Context, id int64) error {
	m.record("Delete")
	switch {
	case m.DeleteFn != nil:
		return m.DeleteFn(ctx, id)
	case m.Base != nil:
		return m.Base.Delete(ctx, id)
	}
	return m.Err
}

// RunInTx implements store.AccountStore. fn receives the mock so Fn
// overrides still apply inside the unit of work.
func (m *MockAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	m.record("RunInTx")
	if m.RunInTxFn != nil {
		return m.RunInTxFn(ctx, fn)
	}
	return fn(ctx, m)
}
