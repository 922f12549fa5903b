package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/cardledger/internal/api/middleware"
)

// RegisterRoutes mounts the ledger endpoints under /api.
func RegisterRoutes(
	r chi.Router,
	accounts *AccountHandler,
	sessions *SessionHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts", accounts.CreateAccount)
		r.Get("/cards/{number}", accounts.GetCard)
		r.Post("/sessions", sessions.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Delete("/sessions", sessions.Logout)
			r.Get("/session/balance", sessions.Balance)
			r.Post("/session/deposits", sessions.Deposit)
			r.Post("/session/transfers", sessions.Transfer)
			r.Delete("/session/account", sessions.CloseAccount)
		})
	})
}
