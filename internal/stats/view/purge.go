// Copyright (c) 2026 Noveris. All rights reserved.

package view

import (
	"context"
	"log/slog"
	"time"
)

// # Purge Worker

// PurgeWorker periodically removes expired dedup records.
//
// The worker is storage hygiene only. The counting decision always reads
// the record timestamp explicitly, so a late, missed, or disabled purge
// can never change what counts. Records are retained for the window plus
// a slack so the purge never races a refresh near the boundary.
type PurgeWorker struct {
	store     Store
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewPurgeWorker constructs a purge worker for the dedup store.
//
// retention should be the dedup window plus a slack margin.
func NewPurgeWorker(store Store, interval, retention time.Duration, logger *slog.Logger) *PurgeWorker {
	return &PurgeWorker{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Run blocks, purging on every tick until the context is cancelled.
// Intended to be launched as a goroutine from main.
func (worker *PurgeWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(worker.interval)
	defer ticker.Stop()

	worker.logger.Info("view_purge_worker_started",
		slog.Duration("interval", worker.interval),
		slog.Duration("retention", worker.retention),
	)

	for {
		select {
		case <-ticker.C:
			worker.purgeOnce(ctx)
		case <-ctx.Done():
			worker.logger.Info("view_purge_worker_stopped")
			return
		}
	}
}

// purgeOnce runs a single purge pass.
func (worker *PurgeWorker) purgeOnce(ctx context.Context) {
	purged, err := worker.store.PurgeExpired(ctx, worker.retention)
	if err != nil {
		worker.logger.Error("view_purge_failed", slog.String("error", err.Error()))
		return
	}

	if purged > 0 {
		worker.logger.Info("view_records_purged", slog.Int64("count", purged))
	}
}
