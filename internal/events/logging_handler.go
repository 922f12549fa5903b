package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/cardledger/internal/platform/logger"
)

// LoggingHandler writes one audit line per event.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler. If logger is nil, a default logger will be used.
func NewLoggingHandler(l *slog.Logger) *LoggingHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LoggingHandler{logger: l.With(slog.String("component", "ledger_audit"))}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *LedgerEvent) error {
	attrs := []any{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("account_id", event.AccountID),
	}
	if event.Amount != 0 {
		attrs = append(attrs, slog.Int64("amount", event.Amount))
	}
	if event.Counterparty != 0 {
		attrs = append(attrs, slog.Int64("counterparty", event.Counterparty))
	}

	logger.FromContextOrDefault(ctx, h.logger).Info("ledger event", attrs...)
	return nil
}
