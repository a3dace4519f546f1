package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/ZhiquAI/aigrading-license-service/internal/ports"
)

// TokenGCWorker deletes long-expired refresh-token rows in bounded batches.
// Revoked rows are kept until expiry passes so rotation replay stays
// detectable; only rows past their retention window are removed, and never
// on the request path.
type TokenGCWorker struct {
	logger    *slog.Logger
	tokens    ports.RefreshTokenRepository
	interval  time.Duration
	retention time.Duration
	batchSize int
}

// NewTokenGCWorker constructs the GC loop with sane defaults.
func NewTokenGCWorker(logger *slog.Logger, tokens ports.RefreshTokenRepository, interval, retention time.Duration, batchSize int) *TokenGCWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &TokenGCWorker{
		logger:    logger,
		tokens:    tokens,
		interval:  interval,
		retention: retention,
		batchSize: batchSize,
	}
}

// Run executes the periodic sweep until context cancellation.
func (w *TokenGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-w.retention)
			deleted, err := w.tokens.DeleteExpiredBefore(ctx, cutoff, w.batchSize)
			if err != nil {
				w.logger.ErrorContext(ctx, "token gc sweep failed",
					"module", "events.token_gc",
					"layer", "adapter",
					"operation", "gc_sweep",
					"outcome", "failure",
					"error", err,
				)
				continue
			}
			if deleted > 0 {
				w.logger.InfoContext(ctx, "token gc sweep completed",
					"module", "events.token_gc",
					"layer", "adapter",
					"operation", "gc_sweep",
					"outcome", "success",
					"deleted", deleted,
				)
			}
		}
	}
}
