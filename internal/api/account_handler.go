package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardledger/internal/api/shared"
	"github.com/phrazzld/cardledger/internal/domain"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/service"
)

// AccountHandler serves the endpoints that need no session: issuing cards
// and describing card numbers.
type AccountHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewAccountHandler creates an AccountHandler. ledger is a logged-out
// LedgerService shared by all requests.
func NewAccountHandler(ledger service.LedgerService, logger *slog.Logger) *AccountHandler {
	if ledger == nil {
		panic("ledger cannot be nil for AccountHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for AccountHandler")
	}

	return &AccountHandler{
		ledger: ledger,
		logger: logger.With(slog.String("component", "account_handler")),
	}
}

// CreateAccount handles POST /api/accounts.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	account, err := h.ledger.CreateAccount(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create account")
		return
	}

	log.Info("card issued",
		slog.Int64("account_id", account.ID),
		slog.String("card_number", domain.MaskCardNumber(account.CardNumber())))

	shared.RespondWithJSON(w, r, http.StatusCreated, CreateAccountResponse{
		CardNumber: account.CardNumber(),
		PIN:        account.PIN,
		Balance:    account.Balance,
	})
}

// GetCard handles GET /api/cards/{number}. Malformed numbers are reported as
// invalid rather than rejected.
func (h *AccountHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	resp := CardInfoResponse{
		CardNumber: domain.MaskCardNumber(number),
		Valid:      domain.IsValidNumber(number),
	}

	if card, err := domain.ParseCardNumber(number); err == nil {
		resp.Brand = string(card.Brand())
		if industry, err := card.Industry(); err == nil {
			resp.Industry = string(industry)
		}
	}

	if resp.Valid {
		exists, err := h.ledger.Exists(r.Context(), number)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to look up card")
			return
		}
		resp.Exists = exists
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
