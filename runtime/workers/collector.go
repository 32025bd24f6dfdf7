package workers

import (
	"context"
	"log/slog"
	"message-board/services"
	"time"
)

// CollectorWorker reclaims orphaned attachments right away and then on every tick.
// A failed pass is logged and retried on the next tick.
type CollectorWorker struct {
	board    services.IBoardService
	interval time.Duration
	log      *slog.Logger
}

func NewCollectorWorker(board services.IBoardService, interval time.Duration, log *slog.Logger) *CollectorWorker {
	return &CollectorWorker{board: board, interval: interval, log: log}
}

func (w *CollectorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.board.CollectOrphans(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("Attachment collection failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
