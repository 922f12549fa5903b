package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/service/auth"
)

// MockJWTService is a scriptable auth.JWTService. Without function fields it
// returns Token/Err from GenerateToken and Claims/ValidateErr from
// ValidateToken.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, sessionID uuid.UUID, accountID int64) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, sessionID uuid.UUID, accountID int64) (string, error) {
	if m.GenerateTokenFn == nil {
		return m.Token, m.Err
	}
	return m.GenerateTokenFn(ctx, sessionID, accountID)
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn == nil {
		return m.Claims, m.ValidateErr
	}
	return m.ValidateTokenFn(ctx, tokenString)
}
