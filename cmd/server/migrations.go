package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/cardledger/internal/config"
	"github.com/phrazzld/cardledger/internal/platform/backend"
	"github.com/phrazzld/cardledger/internal/platform/postgres"
)

// handleMigrations runs one goose command against the configured database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if !postgres.IsMigrationCommand(command) {
		return fmt.Errorf("unknown migration command %q", command)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required to run migrations")
	}

	db, err := backend.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	logger.Info("executing migrations", slog.String("command", command))
	return postgres.Migrate(ctx, db, command, logger)
}
