// Copyright (c) 2026 Noveris. All rights reserved.

package view

import (
	"context"
	"time"
)

// # Dedup Data Access

// Store defines the data access contract for the view dedup records.
type Store interface {

	/*
		CheckAndRecord decides, atomically, whether a view counts.

		A single statement inserts the dedup record on first sight, does
		nothing when a record younger than the window exists, and refreshes
		the timestamp when the existing record has aged past the window.
		The explicit timestamp comparison inside the statement is the sole
		authority; physical record expiry never factors into the decision.

		Parameters:
		  - context: context.Context
		  - chapterID: string (UUID)
		  - identity: Identity (Reader dedup key)
		  - window: time.Duration (Rolling dedup window)

		Returns:
		  - bool: true when the view should count
		  - error: Storage failures (callers must treat as "do not count")
	*/
	CheckAndRecord(context context.Context, chapterID string, identity Identity, window time.Duration) (bool, error)

	/*
		PurgeExpired physically removes dedup records older than the cutoff.

		Purely a storage hygiene operation. Counting correctness never
		depends on it having run.

		Parameters:
		  - context: context.Context
		  - olderThan: time.Duration (Minimum age of purged records)

		Returns:
		  - int64: Number of records removed
		  - error: Storage failures
	*/
	PurgeExpired(context context.Context, olderThan time.Duration) (int64, error)
}

// # Pipeline Contracts

// ChapterCounter bumps the per-chapter view counter.
// Implemented by the chapter repository.
type ChapterCounter interface {

	// IncrementViewCount adds one view and returns the owning novel's ID.
	IncrementViewCount(context context.Context, chapterID string) (string, error)
}

// ReadersRefresher re-derives the readers statistic for a novel.
// Implemented by the aggregate recomputer.
type ReadersRefresher interface {
	UpdateReaders(context context.Context, novelID string) error
}

// ActivityToucher stamps reader activity on a novel.
// Implemented by the novel repository.
type ActivityToucher interface {
	TouchLastActive(context context.Context, novelID string) error
}
