package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/redact"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/service/auth"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
	ledgerKey
)

// SessionResolver returns the ledger of an open session.
type SessionResolver interface {
	Get(id uuid.UUID) (service.LedgerService, error)
}

// AuthMiddleware resolves bearer tokens to logged-in ledger sessions.
type AuthMiddleware struct {
	jwtService auth.JWTService
	sessions   SessionResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Authenticate validates the bearer token, looks up the session it names and
// stores the session ID and its ledger in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token",
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ledger, err := m.sessions.Get(claims.SessionID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Session expired or logged out")
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, claims.SessionID)
		ctx = context.WithValue(ctx, ledgerKey, ledger)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(
			slog.String("session_id", claims.SessionID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID set by Authenticate.
func GetSessionID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetLedger extracts the session's ledger set by Authenticate.
func GetLedger(r *http.Request) (service.LedgerService, bool) {
	ledger, ok := r.Context().Value(ledgerKey).(service.LedgerService)
	return ledger, ok && ledger != nil
}

// WithSession returns a copy of r carrying a session, as Authenticate would set it.
func WithSession(r *http.Request, id uuid.UUID, ledger service.LedgerService) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, id)
	ctx = context.WithValue(ctx, ledgerKey, ledger)
	return r.WithContext(ctx)
}
