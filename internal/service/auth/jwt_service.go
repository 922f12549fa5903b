// Package auth issues and validates the bearer tokens that identify ledger
// sessions over HTTP.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing session tokens.
type JWTService interface {
	// GenerateToken creates a signed token naming the session and the account
	// it is logged into.
	GenerateToken(ctx context.Context, sessionID uuid.UUID, accountID int64) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated contents of a session token.
type Claims struct {
	// SessionID is the registry key of the session the token was issued for.
	SessionID uuid.UUID `json:"sid,omitempty"`

	// AccountID is the account the session was logged into when the token was issued.
	AccountID int64 `json:"aid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
