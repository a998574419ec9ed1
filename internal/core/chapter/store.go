// Copyright (c) 2026 Noveris. All rights reserved.

package chapter

import (
	"context"

	"github.com/noveris/noveris/internal/core/novel"
)

// # Chapter Data Access

// Repository defines the data access contract for chapters.
type Repository interface {

	/*
		ListByNovel returns all live chapters for a novel in reading order.

		Bodies are not hydrated; list responses carry metadata only.

		Parameters:
		  - context: context.Context
		  - novelID: string (Owner ID)
		  - f: ChapterFilter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Chapter: List of chapter metadata
		  - int: Total matching chapters
		  - error: Storage failures
	*/
	ListByNovel(context context.Context, novelID string, f ChapterFilter, limit, offset int) ([]*Chapter, int, error)

	/*
		FindByID returns the chapter with the given ID, body included.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Chapter: Hydrated entity
		  - error: apperr.NotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		Create persists a new chapter.

		Parameters:
		  - context: context.Context
		  - c: *Chapter

		Returns:
		  - error: apperr.Conflict when (novel, seq, extra) collides with a live row
	*/
	Create(context context.Context, c *Chapter) error

	/*
		Update persists changes to an existing chapter.

		Parameters:
		  - context: context.Context
		  - c: *Chapter

		Returns:
		  - error: apperr.NotFound or apperr.Conflict on sequence collision
	*/
	Update(context context.Context, c *Chapter) error

	/*
		SoftDelete marks a chapter as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: apperr.NotFound if targeting a missing row
	*/
	SoftDelete(context context.Context, id string) error

	/*
		SoftDeleteByNovel soft-deletes every live chapter of a novel.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - int64: Number of chapters hidden
		  - error: Storage failures
	*/
	SoftDeleteByNovel(context context.Context, novelID string) (int64, error)

	/*
		IncrementViewCount atomically bumps a chapter's view counter by one.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - string: The owning novel's ID, saving the pipeline a lookup
		  - error: apperr.NotFound if the chapter is missing or soft-deleted
	*/
	IncrementViewCount(context context.Context, id string) (string, error)

	/*
		LatestLiveID returns the ID of the novel's most recently released
		live chapter, or "" when the novel has none.

		Ordering: highest seq wins; at equal seq a regular chapter outranks
		an extra.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - string: Chapter UUID or ""
		  - error: Storage failures
	*/
	LatestLiveID(context context.Context, novelID string) (string, error)

	/*
		ClearExtraFlags unsets the extra flag on all live chapters of a novel.

		Used when a completed novel resumes serialisation and its side
		stories rejoin the main numbering.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - int64: Number of chapters touched
		  - error: Storage failures
	*/
	ClearExtraFlags(context context.Context, novelID string) (int64, error)
}

// # Cross-Domain Contracts

// NovelDirectory resolves novel ownership for chapter mutations.
// Implemented by the novel repository.
type NovelDirectory interface {
	FindByID(context context.Context, id string) (*novel.Novel, error)
}

// LifecycleCoordinator receives per-chapter mutation events so the owning
// novel's derived state can be refreshed. Implemented by the stats
// lifecycle package.
type LifecycleCoordinator interface {
	OnChapterCreated(context context.Context, novelID string)
	OnChapterEdited(context context.Context, novelID string)
	OnChapterDeleted(context context.Context, novelID string)
}
