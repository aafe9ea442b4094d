package logging

import (
	"context"
	"log/slog"
	"time"
)

type LogPruner interface {
	DeleteSystemLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartCleanup runs a daily goroutine that deletes system_logs older than
// retentionDays.
func StartCleanup(pruner LogPruner, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PruneOnce(pruner, retentionDays, time.Now())
			case <-done:
				return
			}
		}
	}()
}

func PruneOnce(pruner LogPruner, retentionDays int, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := pruner.DeleteSystemLogsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("log cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}
