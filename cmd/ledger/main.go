// Package main implements the interactive ledger terminal: create a card,
// log into it, check the balance, add income, transfer and close the account.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/cardledger/internal/config"
	"github.com/phrazzld/cardledger/internal/platform/backend"
	"github.com/phrazzld/cardledger/internal/platform/logger"
	"github.com/phrazzld/cardledger/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("ledger: %v", err)
		os.Exit(1)
	}
}

// run wires the configured backend into a single LedgerService and drives it
// from stdin. Logs go to stderr so they never interleave with the menu.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l := logger.New(os.Stderr, cfg.Server.LogLevel)

	b, err := backend.Open(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to open account store: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			l.Error("error closing account store", "error", err)
		}
	}()

	ledger := service.NewLedgerService(b.Accounts, b.NewEmitter(cfg.Events), l)
	return newCLI(ledger, os.Stdin, os.Stdout, l).Run(ctx)
}
