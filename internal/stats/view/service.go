// Copyright (c) 2026 Noveris. All rights reserved.

package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/noveris/noveris/internal/platform/metrics"
)

// # Service Layer

// Service runs the view counting pipeline.
type Service struct {
	store      Store
	chapters   ChapterCounter
	aggregates ReadersRefresher
	novels     ActivityToucher
	metrics    *metrics.Collector
	window     time.Duration
	logger     *slog.Logger
}

// NewService constructs a new view counting [Service].
func NewService(store Store, chapters ChapterCounter, aggregates ReadersRefresher, novels ActivityToucher, collector *metrics.Collector, window time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		chapters:   chapters,
		aggregates: aggregates,
		novels:     novels,
		metrics:    collector,
		window:     window,
		logger:     logger,
	}
}

// Window returns the configured deduplication window.
func (service *Service) Window() time.Duration {
	return service.window
}

// # Counting Decision

/*
CheckAndRecord decides whether a view counts for the given reader.

Description: Delegates the atomic decision to the dedup store. A store
failure is treated as "do not count": an unavailable dedup store must
never inflate counters, so the pipeline fails closed.

Parameters:
  - context: context.Context
  - chapterID: string (UUID)
  - identity: Identity (Reader dedup key)

Returns:
  - bool: true when the view should count
*/
func (service *Service) CheckAndRecord(context context.Context, chapterID string, identity Identity) bool {
	counted, err := service.store.CheckAndRecord(context, chapterID, identity, service.window)
	if err != nil {
		service.metrics.ViewError()
		service.logger.Error("view_dedup_check_failed",
			slog.String("chapter_id", chapterID),
			slog.String("identity_kind", string(identity.Kind())),
			slog.String("error", err.Error()),
		)
		return false
	}

	return counted
}

// # View Pipeline

/*
RecordView runs the full counting pipeline for one chapter view.

Description: Best-effort by contract; no error ever reaches the HTTP
caller, because serving the chapter must not depend on statistics
bookkeeping. On an allowed view the chapter counter is incremented
atomically, the owning novel's readers statistic is re-derived, and the
novel's activity timestamp is stamped. Each downstream failure is logged
and surfaced through metrics only.

Parameters:
  - context: context.Context (Detached from the request by the caller)
  - chapterID: string (UUID)
  - identity: Identity (Reader dedup key)
*/
func (service *Service) RecordView(context context.Context, chapterID string, identity Identity) {
	if !service.CheckAndRecord(context, chapterID, identity) {
		service.metrics.ViewDeduped()
		return
	}

	// The dedup record is already written, so each step below runs at most
	// once per window for this reader. A failure here leaves counters
	// behind by at most one view until the reconciliation job runs.
	novelID, err := service.chapters.IncrementViewCount(context, chapterID)
	if err != nil {
		service.metrics.ViewError()
		service.logger.Error("view_increment_failed",
			slog.String("chapter_id", chapterID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := service.aggregates.UpdateReaders(context, novelID); err != nil {
		service.metrics.ViewError()
		service.logger.Error("view_readers_refresh_failed",
			slog.String("novel_id", novelID),
			slog.String("error", err.Error()),
		)
	}

	if err := service.novels.TouchLastActive(context, novelID); err != nil {
		service.logger.Warn("view_activity_touch_failed",
			slog.String("novel_id", novelID),
			slog.String("error", err.Error()),
		)
	}

	service.metrics.ViewCounted()

	service.logger.Debug("view_counted",
		slog.String("chapter_id", chapterID),
		slog.String("novel_id", novelID),
		slog.String("identity_kind", string(identity.Kind())),
	)
}
