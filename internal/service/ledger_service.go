package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/events"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/cardledger/internal/service"

// TransferOutcome is the business result of a Transfer that reached the store.
type TransferOutcome int

const (
	// Transferred means the amount moved from the session account to the destination.
	Transferred TransferOutcome = iota
	// InsufficientFunds means the session balance was below the amount; nothing changed.
	InsufficientFunds
	// AccountNotFound means no account holds the destination card; nothing changed.
	AccountNotFound
)

// String returns the outcome name used in logs and API responses.
func (o TransferOutcome) String() string {
	switch o {
	case Transferred:
		return "transferred"
	case InsufficientFunds:
		return "insufficient_funds"
	case AccountNotFound:
		return "account_not_found"
	default:
		return fmt.Sprintf("TransferOutcome(%d)", int(o))
	}
}

// LedgerService is one client's view of the ledger: an optional authenticated
// account plus the operations that act on it.
type LedgerService interface {
	// Authenticate logs into the account holding cardNumber when pin matches.
	// Any current session is cleared first. Wrong credentials and malformed
	// card numbers leave the session empty and are not errors; storage
	// failures are.
	Authenticate(ctx context.Context, cardNumber, pin string) error

	// Logout clears the session unconditionally.
	Logout()

	// Current returns a copy of the session account as of its last read.
	Current() (*domain.Account, bool)

	// CreateAccount issues a new card with a fresh PIN and zero balance.
	// The session is unaffected.
	CreateAccount(ctx context.Context) (*domain.Account, error)

	// Balance returns the session account's stored balance.
	Balance(ctx context.Context) (int64, error)

	// Deposit adds a non-negative amount to the session account.
	Deposit(ctx context.Context, amount int64) error

	// Transfer moves amount from the session account to the account holding
	// cardNumber. Insufficient funds are checked before the destination exists.
	Transfer(ctx context.Context, cardNumber string, amount int64) (TransferOutcome, error)

	// Exists reports whether an account holds cardNumber. No session is required.
	Exists(ctx context.Context, cardNumber string) (bool, error)

	// CloseSession deletes the session account and logs out.
	CloseSession(ctx context.Context) error
}

// LedgerServiceImpl implements the LedgerService interface.
// It is safe for concurrent use; operations on one instance run one at a time.
type LedgerServiceImpl struct {
	accounts store.AccountStore
	emitter  events.EventEmitter
	logger   *slog.Logger
	tracer   trace.Tracer

	mu      sync.Mutex
	current *domain.Account
}

// Ensure LedgerServiceImpl implements LedgerService interface
var _ LedgerService = (*LedgerServiceImpl)(nil)

// NewLedgerService creates a logged-out LedgerService.
// A nil emitter discards events; a nil logger uses the default logger.
func NewLedgerService(accounts store.AccountStore, emitter events.EventEmitter, logger *slog.Logger) LedgerService {
	if accounts == nil {
		panic("accounts store cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerServiceImpl{
		accounts: accounts,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "ledger_service")),
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *LedgerServiceImpl) startSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "LedgerService."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// emit publishes event; delivery failures are logged and never fail the operation.
func (s *LedgerServiceImpl) emit(ctx context.Context, event *events.LedgerEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit ledger event",
			slog.String("event_type", event.Type),
			slog.Int64("account_id", event.AccountID),
			slog.String("error", err.Error()))
	}
}

// lookup reads the account a card number points at, keyed by the card's
// account identifier alone.
func lookup(ctx context.Context, accounts store.AccountStore, card domain.CardNumber) (*domain.Account, bool, error) {
	return accounts.Read(ctx, card.AccountID())
}

// Authenticate implements LedgerService.Authenticate.
func (s *LedgerServiceImpl) Authenticate(ctx context.Context, cardNumber, pin string) (err error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	card, parseErr := domain.ParseCardNumber(cardNumber)
	if parseErr != nil {
		log.Debug("login with malformed card number")
		span.SetAttributes(attribute.Bool("authenticated", false))
		return nil
	}

	account, found, err := lookup(ctx, s.accounts, card)
	if err != nil {
		log.Error("failed to read account during login",
			slog.Int64("account_id", card.AccountID()),
			slog.String("error", err.Error()))
		return NewLedgerServiceError("authenticate", "failed to read account", err)
	}

	// Login is stricter than lookup: the whole stored card must match.
	if !found || account.Card != card || subtle.ConstantTimeCompare([]byte(account.PIN), []byte(pin)) != 1 {
		log.Info("login failed", slog.String("card_number", domain.MaskCardNumber(cardNumber)))
		span.SetAttributes(attribute.Bool("authenticated", false))
		return nil
	}

	s.current = account
	span.SetAttributes(attribute.Bool("authenticated", true), attribute.Int64("account_id", account.ID))
	log.Info("login succeeded", slog.Int64("account_id", account.ID))
	return nil
}

// Logout implements LedgerService.Logout.
func (s *LedgerServiceImpl) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Current implements LedgerService.Current.
func (s *LedgerServiceImpl) Current() (*domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// CreateAccount implements LedgerService.CreateAccount.
func (s *LedgerServiceImpl) CreateAccount(ctx context.Context) (account *domain.Account, err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	id, err := s.accounts.NextAccountIdentifier(ctx)
	if err != nil {
		log.Error("failed to obtain account identifier", slog.String("error", err.Error()))
		return nil, NewLedgerServiceError("create_account", "failed to obtain account identifier", err)
	}

	card, err := domain.NewCardNumber(id)
	if err != nil {
		log.Error("account identifier out of range", slog.Int64("account_id", id))
		return nil, NewLedgerServiceError("create_account", "account identifier out of range", err)
	}

	account, err = s.accounts.CreateAccount(ctx, id, card)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAccount) {
			log.Error("issued account identifier already in use", slog.Int64("account_id", id))
		} else {
			log.Error("failed to create account",
				slog.Int64("account_id", id),
				slog.String("error", err.Error()))
		}
		return nil, NewLedgerServiceError("create_account", "failed to create account", err)
	}

	span.SetAttributes(attribute.Int64("account_id", id))
	s.emit(ctx, events.NewLedgerEvent(events.TypeAccountCreated, id, 0, 0))
	return account, nil
}

// sessionAccountGone ends a session whose account was deleted elsewhere.
// The caller holds s.mu.
func (s *LedgerServiceImpl) sessionAccountGone(ctx context.Context, op string) error {
	logger.FromContextOrDefault(ctx, s.logger).Warn("session account no longer exists",
		slog.String("operation", op),
		slog.Int64("account_id", s.current.ID))
	s.current = nil
	return NewLedgerServiceError(op, "session account no longer exists", store.ErrAccountNotFound)
}

// Balance implements LedgerService.Balance.
func (s *LedgerServiceImpl) Balance(ctx context.Context) (balance int64, err error) {
	ctx, span := s.startSpan(ctx, "Balance")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0, ErrNoActiveSession
	}

	account, found, err := s.accounts.Read(ctx, s.current.ID)
	if err != nil {
		return 0, NewLedgerServiceError("balance", "failed to read account", err)
	}
	if !found {
		return 0, s.sessionAccountGone(ctx, "balance")
	}

	s.current = account
	return account.Balance, nil
}

// Deposit implements LedgerService.Deposit.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, amount int64) (err error) {
	ctx, span := s.startSpan(ctx, "Deposit", attribute.Int64("amount", amount))
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveSession
	}
	if amount < 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	var (
		updated *domain.Account
		gone    bool
	)
	err = s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		account, found, err := tx.Read(ctx, s.current.ID)
		if err != nil {
			return err
		}
		if !found {
			gone = true
			return nil
		}
		if err := account.Deposit(amount); err != nil {
			return err
		}
		if err := tx.Save(ctx, account, nil); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		log.Error("deposit failed",
			slog.Int64("account_id", s.current.ID),
			slog.String("error", err.Error()))
		return NewLedgerServiceError("deposit", "failed to update balance", err)
	}
	if gone {
		return s.sessionAccountGone(ctx, "deposit")
	}

	s.current = updated
	log.Info("deposit completed", slog.Int64("account_id", updated.ID), slog.Int64("amount", amount))
	s.emit(ctx, events.NewLedgerEvent(events.TypeAccountDeposited, updated.ID, amount, 0))
	return nil
}

// Transfer implements LedgerService.Transfer.
//
// The source is re-read inside the unit of work, so the funds check uses the
// stored balance rather than the session copy. A destination equal to the
// session account is Transferred without a write.
func (s *LedgerServiceImpl) Transfer(
	ctx context.Context,
	cardNumber string,
	amount int64,
) (outcome TransferOutcome, err error) {
	ctx, span := s.startSpan(ctx, "Transfer", attribute.Int64("amount", amount))
	defer func() {
		if err == nil {
			span.SetAttributes(attribute.String("outcome", outcome.String()))
		}
		endSpan(span, err)
	}()
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0, ErrNoActiveSession
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	dest, err := domain.ParseCardNumber(cardNumber)
	if err != nil {
		return 0, err
	}

	var (
		source *domain.Account
		target *domain.Account
		gone   bool
	)
	err = s.accounts.RunInTx(ctx, func(ctx context.Context, tx store.AccountStore) error {
		var found bool
		var err error

		source, found, err = tx.Read(ctx, s.current.ID)
		if err != nil {
			return err
		}
		if !found {
			gone = true
			return nil
		}

		if source.Balance < amount {
			outcome = InsufficientFunds
			return nil
		}

		target, found, err = lookup(ctx, tx, dest)
		if err != nil {
			return err
		}
		if !found {
			outcome = AccountNotFound
			return nil
		}

		outcome = Transferred
		if target.ID == source.ID {
			return nil
		}

		if err := source.Withdraw(amount); err != nil {
			return err
		}
		if err := target.Deposit(amount); err != nil {
			return err
		}
		return tx.Save(ctx, source, target)
	})
	if err != nil {
		log.Error("transfer failed",
			slog.Int64("account_id", s.current.ID),
			slog.String("destination", domain.MaskCardNumber(cardNumber)),
			slog.String("error", err.Error()))
		return 0, NewLedgerServiceError("transfer", "failed to move funds", err)
	}
	if gone {
		return 0, s.sessionAccountGone(ctx, "transfer")
	}

	s.current = source
	log.Info("transfer evaluated",
		slog.Int64("account_id", source.ID),
		slog.String("destination", domain.MaskCardNumber(cardNumber)),
		slog.Int64("amount", amount),
		slog.String("outcome", outcome.String()))

	if outcome == Transferred && target.ID != source.ID {
		s.emit(ctx, events.NewLedgerEvent(events.TypeAccountTransferred, source.ID, amount, target.ID))
	}
	return outcome, nil
}

// Exists implements LedgerService.Exists.
func (s *LedgerServiceImpl) Exists(ctx context.Context, cardNumber string) (exists bool, err error) {
	ctx, span := s.startSpan(ctx, "Exists")
	defer func() { endSpan(span, err) }()

	card, err := domain.ParseCardNumber(cardNumber)
	if err != nil {
		return false, err
	}

	_, found, err := lookup(ctx, s.accounts, card)
	if err != nil {
		return false, NewLedgerServiceError("exists", "failed to read account", err)
	}
	return found, nil
}

// CloseSession implements LedgerService.CloseSession.
// The session survives a storage failure so the close can be retried.
func (s *LedgerServiceImpl) CloseSession(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "CloseSession")
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoActiveSession
	}

	id := s.current.ID
	if err := s.accounts.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return s.sessionAccountGone(ctx, "close_session")
		}
		log.Error("failed to close account",
			slog.Int64("account_id", id),
			slog.String("error", err.Error()))
		return NewLedgerServiceError("close_session", "failed to delete account", err)
	}

	s.current = nil
	log.Info("account closed", slog.Int64("account_id", id))
	s.emit(ctx, events.NewLedgerEvent(events.TypeAccountClosed, id, 0, 0))
	return nil
}
