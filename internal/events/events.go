package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Ledger event types.
const (
	TypeAccountCreated     = "account.created"
	TypeAccountDeposited   = "account.deposited"
	TypeAccountTransferred = "account.transferred"
	TypeAccountClosed      = "account.closed"
)

// LedgerEvent records a completed change to an account.
// It never carries a PIN or an unmasked card number.
type LedgerEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// AccountID is the account the change was made on behalf of
	AccountID int64 `json:"account_id"`

	// Amount moved by the change; zero for created and closed events
	Amount int64 `json:"amount,omitempty"`

	// Counterparty is the destination account of a transfer
	Counterparty int64 `json:"counterparty,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewLedgerEvent creates a LedgerEvent with a fresh ID.
func NewLedgerEvent(eventType string, accountID, amount, counterparty int64) *LedgerEvent {
	return &LedgerEvent{
		ID:           uuid.New(),
		Type:         eventType,
		AccountID:    accountID,
		Amount:       amount,
		Counterparty: counterparty,
		CreatedAt:    time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *LedgerEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *LedgerEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *LedgerEvent) error { return nil }
