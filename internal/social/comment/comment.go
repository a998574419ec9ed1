// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package comment implements reader discussion threads on novels and chapters.

Comments attach to a novel and optionally to one of its chapters. Deletion is
soft and allowed to the comment's writer or a moderator.
*/
package comment

import (
	"context"
	"time"
)

// # Domain Entities

// Comment is a single discussion entry. Username is joined in from the
// account table for display and never stored on the comment row.
type Comment struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Username  string     `json:"username"`
	NovelID   string     `json:"novel_id"`
	ChapterID *string    `json:"chapter_id,omitempty"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// # Field Identifiers

const (
	FieldBody = "body"

	// MaxBodyLength bounds a single comment.
	MaxBodyLength = 4000
)

// # Repository Contracts

// Repository defines persistence for discussion threads.
type Repository interface {
	// Create persists a new comment.
	Create(context context.Context, c *Comment) error

	// FindByID retrieves a live comment.
	FindByID(context context.Context, id string) (*Comment, error)

	// ListByNovel pages through a novel's thread, newest first. When
	// chapterID is non-nil the page is scoped to that chapter's thread.
	ListByNovel(context context.Context, novelID string, chapterID *string, limit, offset int) ([]*Comment, int, error)

	// UpdateBody replaces a comment's body.
	UpdateBody(context context.Context, id, body string) error

	// SoftDelete marks a comment as deleted.
	SoftDelete(context context.Context, id string) error
}
