// Copyright (c) 2026 Noveris. All rights reserved.

package novel

import "context"

// # Novel Data Access

// Repository defines the data access contract for novels.
type Repository interface {

	/*
		List returns novels matching the filter, newest activity first by default.

		Parameters:
		  - context: context.Context
		  - f: Filter
		  - limit: int
		  - offset: int

		Returns:
		  - []*Novel: List of hydrated novels
		  - int: Total matching novels
		  - error: Storage failures
	*/
	List(context context.Context, f Filter, limit, offset int) ([]*Novel, int, error)

	/*
		FindByID returns the novel with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Novel: Hydrated metadata
		  - error: apperr.NotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*Novel, error)

	/*
		FindBySlug returns the novel with the given URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Novel: Hydrated metadata
		  - error: apperr.NotFound if missing or soft-deleted
	*/
	FindBySlug(context context.Context, slug string) (*Novel, error)

	/*
		Create persists a new novel to the store.

		Derived statistics start at zero regardless of the entity values.

		Parameters:
		  - context: context.Context
		  - n: *Novel

		Returns:
		  - error: apperr.Conflict on slug collision, storage failures
	*/
	Create(context context.Context, n *Novel) error

	/*
		Update persists metadata changes (title, slug, description, status).

		Derived fields are never written by this method.

		Parameters:
		  - context: context.Context
		  - n: *Novel

		Returns:
		  - error: apperr.NotFound if targeting a missing row
	*/
	Update(context context.Context, n *Novel) error

	/*
		SoftDelete marks a novel as deleted without physical row removal.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: apperr.NotFound if targeting a missing row
	*/
	SoftDelete(context context.Context, id string) error

	/*
		SetLatestChapter persists the latest-chapter pointer for a novel.

		A nil chapterID clears the pointer (no live chapters remain).

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)
		  - chapterID: *string (UUID or nil)

		Returns:
		  - error: Storage failures
	*/
	SetLatestChapter(context context.Context, novelID string, chapterID *string) error

	/*
		TouchLastActive stamps the novel's last reader activity to now.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - error: Storage failures
	*/
	TouchLastActive(context context.Context, novelID string) error
}

// # Cross-Domain Contracts

// ChapterPurger cascades a novel deletion into its chapters.
// Implemented by the chapter repository.
type ChapterPurger interface {

	// SoftDeleteByNovel soft-deletes every live chapter of a novel and
	// returns the number of rows affected.
	SoftDeleteByNovel(context context.Context, novelID string) (int64, error)
}

// LifecycleCoordinator receives content mutation events so derived novel
// statistics can be refreshed. Implemented by the stats lifecycle package.
type LifecycleCoordinator interface {

	// OnChaptersBulkDeleted reacts to a whole-novel chapter wipe.
	OnChaptersBulkDeleted(context context.Context, novelID string)

	// OnNovelStatusChanged reacts to a publication status transition.
	OnNovelStatusChanged(context context.Context, novelID string, oldStatus, newStatus string)
}
