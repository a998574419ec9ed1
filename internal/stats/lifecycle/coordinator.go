// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package lifecycle reacts to content mutations on behalf of the stats layer.

Whenever a chapter is created, edited, or deleted, or a novel changes its
publication status, the owning novel's derived state must follow: the
latest-chapter pointer is re-derived from the live chapter set, then the
aggregate statistics are recomputed. The coordinator is the single place
where that ordering lives.

The coordinator is deliberately forgiving: content mutations must never be
rolled back because statistics bookkeeping failed, so every method absorbs
its own errors. The reconciliation job repairs whatever a failed refresh
leaves behind.
*/
package lifecycle

import (
	"context"
	"log/slog"

	"github.com/noveris/noveris/internal/platform/metrics"
	"github.com/noveris/noveris/internal/stats/aggregate"
)

// # Collaborator Contracts

// ChapterScanner derives latest-pointer candidates from the live chapter
// set. Implemented by the chapter repository.
type ChapterScanner interface {

	// LatestLiveID returns the latest live chapter's ID, or "" when none.
	LatestLiveID(context context.Context, novelID string) (string, error)

	// ClearExtraFlags rejoins side stories to the main numbering.
	ClearExtraFlags(context context.Context, novelID string) (int64, error)
}

// PointerStore persists the derived latest-chapter pointer.
// Implemented by the novel repository.
type PointerStore interface {
	SetLatestChapter(context context.Context, novelID string, chapterID *string) error
}

// Recomputer re-derives the aggregate statistics.
// Implemented by the aggregate service.
type Recomputer interface {
	RecomputeNovel(context context.Context, novelID string) (aggregate.Totals, error)
}

// # Coordinator

// Coordinator propagates content mutations into derived novel state.
type Coordinator struct {
	chapters ChapterScanner
	novels   PointerStore
	stats    Recomputer
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewCoordinator constructs a [Coordinator] with its collaborators.
func NewCoordinator(chapters ChapterScanner, novels PointerStore, stats Recomputer, collector *metrics.Collector, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		chapters: chapters,
		novels:   novels,
		stats:    stats,
		metrics:  collector,
		logger:   logger,
	}
}

// # Mutation Events

// OnChapterCreated refreshes derived state after a new chapter lands.
func (coordinator *Coordinator) OnChapterCreated(context context.Context, novelID string) {
	coordinator.refresh(context, novelID, "chapter_created")
}

// OnChapterEdited refreshes derived state after a chapter edit.
// Seq or extra-flag changes can move the latest pointer.
func (coordinator *Coordinator) OnChapterEdited(context context.Context, novelID string) {
	coordinator.refresh(context, novelID, "chapter_edited")
}

// OnChapterDeleted refreshes derived state after a chapter soft-delete.
// If the deleted chapter held the pointer, it falls back to the next
// live chapter, or to null when none remain.
func (coordinator *Coordinator) OnChapterDeleted(context context.Context, novelID string) {
	coordinator.refresh(context, novelID, "chapter_deleted")
}

// OnChaptersBulkDeleted refreshes derived state after a whole-novel chapter
// wipe. The pointer clears and every statistic lands back on zero.
func (coordinator *Coordinator) OnChaptersBulkDeleted(context context.Context, novelID string) {
	coordinator.refresh(context, novelID, "chapters_bulk_deleted")
}

// OnNovelStatusChanged reacts to a publication status transition.
//
// A completed novel resuming serialisation folds its side stories back
// into the main numbering before the derived state refresh.
func (coordinator *Coordinator) OnNovelStatusChanged(context context.Context, novelID string, oldStatus, newStatus string) {
	if oldStatus == "completed" && newStatus != "completed" {
		cleared, err := coordinator.chapters.ClearExtraFlags(context, novelID)
		if err != nil {
			coordinator.logger.Error("lifecycle_clear_extras_failed",
				slog.String("novel_id", novelID),
				slog.String("error", err.Error()),
			)
		} else if cleared > 0 {
			coordinator.logger.Info("lifecycle_extras_cleared",
				slog.String("novel_id", novelID),
				slog.Int64("count", cleared),
			)
		}
	}

	coordinator.refresh(context, novelID, "status_changed")
}

// # Derived State Refresh

/*
Refresh re-derives the latest pointer, persists it, then recomputes the
aggregates.

Description: The pointer write happens first: a reader must never follow a
pointer to a deleted chapter, while momentarily stale totals are harmless
and self-heal on the next recompute. Exposed for the reconciliation job,
which needs the error and the fresh totals rather than fire-and-forget
semantics.

Parameters:
  - context: context.Context
  - novelID: string (UUID)

Returns:
  - aggregate.Totals: The freshly derived statistics
  - error: The first failing step
*/
func (coordinator *Coordinator) Refresh(context context.Context, novelID string) (aggregate.Totals, error) {
	latestID, err := coordinator.chapters.LatestLiveID(context, novelID)
	if err != nil {
		return aggregate.Totals{}, err
	}

	var pointer *string
	if latestID != "" {
		pointer = &latestID
	}

	if err := coordinator.novels.SetLatestChapter(context, novelID, pointer); err != nil {
		return aggregate.Totals{}, err
	}

	return coordinator.stats.RecomputeNovel(context, novelID)
}

// refresh is the fire-and-forget wrapper used by the mutation events.
func (coordinator *Coordinator) refresh(context context.Context, novelID, event string) {
	if _, err := coordinator.Refresh(context, novelID); err != nil {
		coordinator.metrics.RecomputeError()
		coordinator.logger.Error("lifecycle_refresh_failed",
			slog.String("novel_id", novelID),
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
