package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/service/auth"
	"github.com/phrazzld/cardledger/internal/store"
)

// SessionHandler serves login, logout and the operations on a logged-in account.
type SessionHandler struct {
	sessions   *service.SessionRegistry
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewSessionHandler creates a new SessionHandler with the given dependencies.
func NewSessionHandler(
	sessions *service.SessionRegistry,
	jwtService auth.JWTService,
	logger *slog.Logger,
) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil for SessionHandler")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil for SessionHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		sessions:   sessions,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "session_handler")),
	}
}

// Login handles POST /api/sessions.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sessionID, account, err := h.sessions.Open(r.Context(), req.CardNumber, req.PIN)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgWrongCredentials, err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), sessionID, account.ID)
	if err != nil {
		h.sessions.Close(sessionID)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate session token", err)
		return
	}

	log.Info("session opened",
		slog.String("session_id", sessionID.String()),
		slog.Int64("account_id", account.ID))

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		Token:      token,
		CardNumber: account.CardNumber(),
	})
}

// Logout handles DELETE /api/sessions.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := sessionFromRequest(w, r, h.logger)
	if !ok {
		return
	}

	h.sessions.Close(sessionID)
	shared.RespondWithMessage(w, r, MsgLoggedOut)
}

// Balance handles GET /api/session/balance.
func (h *SessionHandler) Balance(w http.ResponseWriter, r *http.Request) {
	sessionID, ledger, ok := sessionFromRequest(w, r, h.logger)
	if !ok {
		return
	}

	balance, err := ledger.Balance(r.Context())
	if err != nil {
		h.dropIfGone(sessionID, err)
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BalanceResponse{Balance: balance})
}

// Deposit handles POST /api/session/deposits.
func (h *SessionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	sessionID, ledger, ok := sessionFromRequest(w, r, h.logger)
	if !ok {
		return
	}

	var req DepositRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := ledger.Deposit(r.Context(), req.Amount); err != nil {
		h.dropIfGone(sessionID, err)
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DepositResponse{
		Message: MsgIncomeAdded,
		Balance: currentBalance(ledger),
	})
}

// Transfer handles POST /api/session/transfers. A destination failing the
// Luhn check is rejected before the ledger is consulted.
func (h *SessionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ledger, ok := sessionFromRequest(w, r, h.logger)
	if !ok {
		return
	}

	var req TransferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !domain.IsValidNumber(req.CardNumber) {
		shared.RespondWithError(w, r, http.StatusBadRequest, MsgMistypedCard)
		return
	}

	outcome, err := ledger.Transfer(r.Context(), req.CardNumber, req.Amount)
	if err != nil {
		h.dropIfGone(sessionID, err)
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("transfer handled", slog.String("outcome", outcome.String()))

	switch outcome {
	case service.Transferred:
		shared.RespondWithJSON(w, r, http.StatusOK, TransferResponse{
			Outcome: outcome.String(),
			Message: MsgTransferSucceeded,
			Balance: currentBalance(ledger),
		})
	case service.InsufficientFunds:
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity, MsgNotEnoughMoney)
	case service.AccountNotFound:
		shared.RespondWithError(w, r, http.StatusNotFound, MsgNoSuchCard)
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgUnexpected, nil)
	}
}

// CloseAccount handles DELETE /api/session/account. The session ends with the account.
func (h *SessionHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	sessionID, ledger, ok := sessionFromRequest(w, r, h.logger)
	if !ok {
		return
	}

	if err := ledger.CloseSession(r.Context()); err != nil {
		h.dropIfGone(sessionID, err)
		HandleAPIError(w, r, err, "")
		return
	}

	h.sessions.Close(sessionID)
	shared.RespondWithMessage(w, r, MsgAccountClosed)
}

// dropIfGone forgets a session whose account was deleted by another client.
func (h *SessionHandler) dropIfGone(sessionID uuid.UUID, err error) {
	if errors.Is(err, store.ErrAccountNotFound) || errors.Is(err, service.ErrNoActiveSession) {
		h.sessions.Close(sessionID)
	}
}

func currentBalance(ledger service.LedgerService) int64 {
	account, ok := ledger.Current()
	if !ok {
		return 0
	}
	return account.Balance
}
