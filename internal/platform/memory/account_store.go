package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/store"
)

// MemoryAccountStore implements store.AccountStore with a map.
type MemoryAccountStore struct {
	// mu guards accounts and lastID.
	mu       sync.Mutex
	accounts map[int64]domain.Account
	lastID   int64

	// unit serializes units of work and the writes made outside them.
	unit sync.Mutex

	opts   store.Options
	logger *slog.Logger
}

// NewMemoryAccountStore creates an empty store whose sequence starts at 0.
// If logger is nil, a default logger will be used.
func NewMemoryAccountStore(logger *slog.Logger, opts ...store.Option) *MemoryAccountStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryAccountStore{
		accounts: make(map[int64]domain.Account),
		opts:     store.ApplyOptions(opts...),
		logger:   logger.With(slog.String("component", "memory_account_store")),
	}
}

// Ensure MemoryAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*MemoryAccountStore)(nil)

// NextAccountIdentifier implements store.AccountStore.NextAccountIdentifier.
func (s *MemoryAccountStore) NextAccountIdentifier(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	logger.FromContextOrDefault(ctx, s.logger).Debug("issued account identifier",
		slog.Int64("account_id", s.lastID))
	return s.lastID, nil
}

// CreateAccount implements store.AccountStore.CreateAccount.
func (s *MemoryAccountStore) CreateAccount(
	ctx context.Context,
	id int64,
	card domain.CardNumber,
) (*domain.Account, error) {
	s.unit.Lock()
	defer s.unit.Unlock()
	return s.create(ctx, id, card)
}

// Read implements store.AccountStore.Read.
func (s *MemoryAccountStore) Read(ctx context.Context, id int64) (*domain.Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, false, nil
	}
	return &account, true, nil
}

// Save implements store.AccountStore.Save.
func (s *MemoryAccountStore) Save(ctx context.Context, primary, secondary *domain.Account) error {
	s.unit.Lock()
	defer s.unit.Unlock()
	return s.save(ctx, primary, secondary)
}

// Delete implements store.AccountStore.Delete.
func (s *MemoryAccountStore) Delete(ctx context.Context, id int64) error {
	s.unit.Lock()
	defer s.unit.Unlock()
	return s.delete(ctx, id)
}

// RunInTx implements store.AccountStore.RunInTx. Units of work run one at a
// time; the store handed to fn skips the unit lock it already holds.
func (s *MemoryAccountStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	s.unit.Lock()
	defer s.unit.Unlock()
	return fn(ctx, &unitStore{s: s})
}

func (s *MemoryAccountStore) create(
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

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; exists {
		log.Warn("account already exists", slog.Int64("account_id", id))
		return nil, store.ErrDuplicateAccount
	}
	s.accounts[id] = *account

	log.Info("account created",
		slog.Int64("account_id", id),
		slog.String("card_number", domain.MaskCardNumber(card.String())))
	return account, nil
}

func (s *MemoryAccountStore) save(ctx context.Context, primary, secondary *domain.Account) error {
	if err := store.ValidateForSave(primary, secondary); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check both keys before touching either so a missing account leaves no partial write.
	updates := []*domain.Account{primary}
	if secondary != nil {
		updates = append(updates, secondary)
	}
	for _, a := range updates {
		if _, ok := s.accounts[a.ID]; !ok {
			return store.ErrAccountNotFound
		}
	}
	for _, a := range updates {
		stored := s.accounts[a.ID]
		stored.Balance = a.Balance
		s.accounts[a.ID] = stored
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("accounts saved",
		slog.Int64("primary_id", primary.ID),
		slog.Int("account_count", len(updates)))
	return nil
}

func (s *MemoryAccountStore) delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return store.ErrAccountNotFound
	}
	delete(s.accounts, id)

	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted", slog.Int64("account_id", id))
	return nil
}

// unitStore is the view of a MemoryAccountStore handed to a unit of work.
type unitStore struct {
	s *MemoryAccountStore
}

var _ store.AccountStore = (*unitStore)(nil)

func (u *unitStore) NextAccountIdentifier(ctx context.Context) (int64, error) {
	return u.s.NextAccountIdentifier(ctx)
}

func (u *unitStore) CreateAccount(ctx context.Context, id int64, card domain.CardNumber) (*domain.Account, error) {
	return u.s.create(ctx, id, card)
}

func (u *unitStore) Read(ctx context.Context, id int64) (*domain.Account, bool, error) {
	return u.s.Read(ctx, id)
}

func (u *unitStore) Save(ctx context.Context, primary, secondary *domain.Account) error {
	return u.s.save(ctx, primary, secondary)
}

func (u *unitStore) Delete(ctx context.Context, id int64) error {
	return u.s.delete(ctx, id)
}

func (u *unitStore) RunInTx(ctx context.Context, fn store.AccountTxFn) error {
	return fn(ctx, u)
}
