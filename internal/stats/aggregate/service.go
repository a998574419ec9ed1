// Copyright (c) 2026 Noveris. All rights reserved.

package aggregate

import (
	"context"
	"log/slog"
)

// # Service Layer

// Service exposes the recompute operations to the rest of the system.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new recompute [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

/*
RecomputeNovel re-derives all three statistics for a novel.

Description: Idempotent; safe to call redundantly. A missing or deleted
novel is a warn-level no-op because the caller is usually reacting to a
mutation that may have raced a deletion.

Parameters:
  - context: context.Context
  - novelID: string (UUID)

Returns:
  - Totals: The freshly derived values (zero value on a missing novel)
  - error: Storage failures
*/
func (service *Service) RecomputeNovel(context context.Context, novelID string) (Totals, error) {
	totals, found, err := service.repo.RecomputeTotals(context, novelID)
	if err != nil {
		return Totals{}, err
	}

	if !found {
		service.logger.Warn("aggregate_recompute_skipped_missing_novel",
			slog.String("novel_id", novelID),
		)
		return Totals{}, nil
	}

	service.logger.Debug("aggregate_recomputed",
		slog.String("novel_id", novelID),
		slog.Int64("word_count", totals.WordCount),
		slog.Int("total_chapters", totals.TotalChapters),
		slog.Int64("readers", totals.Readers),
	)

	return totals, nil
}

/*
UpdateReaders re-derives only the readers statistic for a novel.

Description: Called on the view hot path after every counted view.

Parameters:
  - context: context.Context
  - novelID: string (UUID)

Returns:
  - error: Storage failures
*/
func (service *Service) UpdateReaders(context context.Context, novelID string) error {
	_, found, err := service.repo.RecomputeReaders(context, novelID)
	if err != nil {
		return err
	}

	if !found {
		service.logger.Warn("readers_refresh_skipped_missing_novel",
			slog.String("novel_id", novelID),
		)
	}

	return nil
}
