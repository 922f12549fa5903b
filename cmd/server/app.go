package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/cardledger/internal/config"
	"github.com/phrazzld/cardledger/internal/events"
	"github.com/phrazzld/cardledger/internal/platform/backend"
	"github.com/phrazzld/cardledger/internal/service"
	"github.com/phrazzld/cardledger/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	backend *backend.Backend
	emitter events.EventEmitter

	jwtService auth.JWTService
	sessions   *service.SessionRegistry
	ledger     service.LedgerService
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required to serve HTTP")
	}

	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.backend, err = backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open account store: %w", err)
	}

	app.emitter = app.backend.NewEmitter(cfg.Events)
	app.sessions = service.NewSessionRegistry(app.newLedger, logger,
		service.WithSessionLifetime(time.Duration(cfg.Auth.TokenLifetimeMinutes)*time.Minute))
	app.ledger = app.newLedger()

	logger.Info("application initialized successfully")
	return app, nil
}

// newLedger builds a logged-out LedgerService over the shared store.
func (app *application) newLedger() service.LedgerService {
	return service.NewLedgerService(app.backend.Accounts, app.emitter, app.logger)
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.backend != nil {
		if err := app.backend.Close(); err != nil {
			app.logger.Error("error closing account store", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed", slog.Int("open_sessions", app.sessions.Len()))
}
