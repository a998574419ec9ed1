// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package novel defines the core domain entities for the Noveris catalogue.

It manages the lifecycle of serialised web novels including metadata,
publication status, and the derived statistics maintained by the stats
subsystem.

Core Responsibility:

  - Catalogue: Defines statuses (Ongoing, Completed, Hiatus) and ownership.
  - Discovery: Manages slugs and title search for public browsing.
  - Statistics: Carries derived fields (word count, chapter totals, readers)
    that are written exclusively by the aggregate recomputer.

This package acts as the source of truth for all novel-related data models.
*/
package novel

import "time"

// # Domain Enums

// Status represents the publication status of a novel.
type Status string

const (
	// StatusOngoing indicates the novel is actively updating.
	StatusOngoing Status = "ongoing"

	// StatusCompleted indicates no further chapters are expected.
	StatusCompleted Status = "completed"

	// StatusHiatus indicates the novel is paused indefinitely.
	StatusHiatus Status = "hiatus"
)

// IsValid reports whether s is a recognised [Status] value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus:
		return true
	}
	return false
}

// # Core Entities

// Novel is the central aggregate of the Noveris domain.
// It represents a single serialised publication in the catalogue.
type Novel struct {
	ID          string `json:"id"`
	AuthorID    string `json:"author_id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"` // URL-safe identifier
	Description string `json:"description"`
	Status      Status `json:"status"`

	// # Derived Statistics
	// These fields are owned by the aggregate recomputer and are never
	// accepted from client input. They are always recomputable from the
	// novel's live chapters.
	WordCount     int64 `json:"word_count"`
	TotalChapters int   `json:"total_chapters"`
	Readers       int64 `json:"readers"`

	// LatestChapterID points at the most recently released live chapter.
	// nil when the novel has no live chapters.
	LatestChapterID *string `json:"latest_chapter_id,omitempty"`

	LastActiveAt time.Time  `json:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// # Search & Filtering

// Filter holds the parameters for a filtered novel list query.
type Filter struct {
	Status   []Status `json:"status,omitempty"`
	AuthorID string   `json:"author_id,omitempty"`
	Query    string   `json:"q,omitempty"`        // Title search term
	Sort     string   `json:"sort,omitempty"`     // latest, readers, words
	SortDir  string   `json:"sort_dir,omitempty"` // "asc" or "desc"
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID          = "id"
	FieldAuthorID    = "author_id"
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldStatus      = "status"
)
