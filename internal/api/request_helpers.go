package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/cardledger/internal/api/middleware"
	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/service"
)

// decodeAndValidate reads a JSON body into req and validates it. On failure
// it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// sessionFromRequest returns the session placed in the context by the auth
// middleware. It writes a 401 response and returns false when none is present.
func sessionFromRequest(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (uuid.UUID, service.LedgerService, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	id, okID := middleware.GetSessionID(r)
	ledger, okLedger := middleware.GetLedger(r)
	if !okID || !okLedger {
		log.Warn("session not found in request context")
		HandleAPIError(w, r, service.ErrNoActiveSession, "")
		return uuid.Nil, nil, false
	}
	return id, ledger, true
}
