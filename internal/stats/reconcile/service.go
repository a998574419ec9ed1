// Copyright (c) 2026 Noveris. All rights reserved.

package reconcile

import (
	"context"
	"log/slog"
)

// # Service Layer

// Service runs the reconciliation sweeps.
type Service struct {
	store     Store
	refresher Refresher
	logger    *slog.Logger
}

// NewService constructs a new reconciliation [Service].
func NewService(store Store, refresher Refresher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
}

/*
ReconcileOne repairs the derived state of a single novel.

Description: Reads the cached statistics, then re-derives and persists
both the latest pointer and the statistics from live chapters. The before
and after values are reported so an operator can see what drifted.

Parameters:
  - context: context.Context
  - novelID: string (UUID)

Returns:
  - Result: Before/after statistics and whether anything changed
  - error: apperr.NotFound for an unknown novel, storage failures
*/
func (service *Service) ReconcileOne(context context.Context, novelID string) (Result, error) {
	before, err := service.store.StoredTotals(context, novelID)
	if err != nil {
		return Result{}, err
	}

	after, err := service.refresher.Refresh(context, novelID)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		NovelID: novelID,
		Before:  before,
		After:   after,
		Changed: before != after,
	}

	if result.Changed {
		service.logger.Info("reconcile_drift_repaired",
			slog.String("novel_id", novelID),
			slog.Int64("readers_before", before.Readers),
			slog.Int64("readers_after", after.Readers),
		)
	}

	return result, nil
}

/*
ReconcileAll sweeps the entire catalogue.

Description: Processes every live novel independently; one failing novel
never aborts the sweep. Each repair is idempotent, so a crashed or
repeated sweep is always safe to rerun.

Parameters:
  - context: context.Context

Returns:
  - Summary: Totals for the sweep
  - error: Only when the novel listing itself fails
*/
func (service *Service) ReconcileAll(context context.Context) (Summary, error) {
	ids, err := service.store.LiveNovelIDs(context)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(ids)}

	for _, id := range ids {
		if _, err := service.ReconcileOne(context, id); err != nil {
			summary.Failed++
			service.logger.Error("reconcile_novel_failed",
				slog.String("novel_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		summary.Updated++
	}

	service.logger.Info("reconcile_sweep_finished",
		slog.Int("total", summary.Total),
		slog.Int("updated", summary.Updated),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}
