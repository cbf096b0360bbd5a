package agent

import (
	"context"
	"log/slog"
	"time"
)

const defaultSweepInterval = time.Minute

// RunSweeper evicts sessions idle for longer than ttl until ctx is done.
// A store that does not implement Sweeper, or a non-positive ttl, makes it
// return immediately.
func RunSweeper(ctx context.Context, store SessionStore, ttl, interval time.Duration) error {
	sweeper, ok := store.(Sweeper)
	if !ok || ttl <= 0 {
		return nil
	}
	if interval <= 0 {
		interval = min(ttl, defaultSweepInterval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	slog.Info("session sweeper started", "interval", interval, "ttl", ttl)

	for {
		select {
		case <-ticker.C:
			n, err := sweeper.Sweep(ctx, time.Now().Add(-ttl))
			if err != nil {
				slog.Error("session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Info("evicted idle sessions", "count", n)
			}
		case <-ctx.Done():
			slog.Info("session sweeper shutting down", "reason", ctx.Err())
			return nil
		}
	}
}
