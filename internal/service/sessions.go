package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/domain"
)

const (
	// DefaultSessionLifetime matches the default token lifetime.
	DefaultSessionLifetime = 60 * time.Minute

	sweepInterval = time.Minute
)

type sessionEntry struct {
	ledger    LedgerService
	expiresAt time.Time
}

// SessionRegistry keeps one LedgerService per logged-in client. Entries
// expire after the session lifetime; expired entries are rejected by Get and
// swept by Open.
type SessionRegistry struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]sessionEntry
	lastSweep time.Time

	newLedger func() LedgerService
	lifetime  time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// RegistryOption configures a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithSessionLifetime sets how long a session lives after it is opened.
// Non-positive values are ignored.
func WithSessionLifetime(d time.Duration) RegistryOption {
	return func(r *SessionRegistry) {
		if d > 0 {
			r.lifetime = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewSessionRegistry creates an empty registry. newLedger builds the
// logged-out LedgerService each new session starts from.
func NewSessionRegistry(newLedger func() LedgerService, logger *slog.Logger, opts ...RegistryOption) *SessionRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &SessionRegistry{
		sessions:  make(map[uuid.UUID]sessionEntry),
		newLedger: newLedger,
		lifetime:  DefaultSessionLifetime,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "session_registry")),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

// Open authenticates a new session. It returns ErrInvalidCredentials when the
// card number or PIN does not match.
func (r *SessionRegistry) Open(ctx context.Context, cardNumber, pin string) (uuid.UUID, *domain.Account, error) {
	ledger := r.newLedger()
	if err := ledger.Authenticate(ctx, cardNumber, pin); err != nil {
		return uuid.Nil, nil, err
	}

	account, ok := ledger.Current()
	if !ok {
		return uuid.Nil, nil, ErrInvalidCredentials
	}

	id := uuid.New()
	now := r.now()

	r.mu.Lock()
	var expired []LedgerService
	if now.Sub(r.lastSweep) >= sweepInterval {
		expired = r.sweepLocked(now)
		r.lastSweep = now
	}
	r.sessions[id] = sessionEntry{ledger: ledger, expiresAt: now.Add(r.lifetime)}
	r.mu.Unlock()

	r.logoutAll(expired)
	r.logger.Debug("session opened",
		slog.String("session_id", id.String()),
		slog.Int64("account_id", account.ID))
	return id, account, nil
}

// Get returns the ledger of a live session. Expired sessions and sessions
// whose ledger has logged out are dropped and reported as ErrSessionNotFound.
func (r *SessionRegistry) Get(id uuid.UUID) (LedgerService, error) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if !r.now().Before(entry.expiresAt) {
		r.Close(id)
		return nil, ErrSessionNotFound
	}
	if _, loggedIn := entry.ledger.Current(); !loggedIn {
		r.Close(id)
		return nil, ErrSessionNotFound
	}
	return entry.ledger, nil
}

// Close logs the session out and forgets it. Unknown identifiers are ignored.
func (r *SessionRegistry) Close(id uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		entry.ledger.Logout()
		r.logger.Debug("session closed", slog.String("session_id", id.String()))
	}
}

// Sweep drops every expired session and returns how many were removed.
func (r *SessionRegistry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	expired := r.sweepLocked(now)
	r.lastSweep = now
	r.mu.Unlock()

	r.logoutAll(expired)
	return len(expired)
}

func (r *SessionRegistry) sweepLocked(now time.Time) []LedgerService {
	var expired []LedgerService
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			expired = append(expired, entry.ledger)
			delete(r.sessions, id)
		}
	}
	return expired
}

func (r *SessionRegistry) logoutAll(ledgers []LedgerService) {
	for _, l := range ledgers {
		l.Logout()
	}
	if len(ledgers) > 0 {
		r.logger.Debug("expired sessions swept", slog.Int("count", len(ledgers)))
	}
}

// Len returns the number of sessions held, including expired ones not yet
// swept.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
