// Copyright (c) 2026 Noveris. All rights reserved.

package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/database/schema"
)

// # PostgreSQL Repository

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed comment store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Create persists a new comment.
func (repository *repository) Create(context context.Context, c *Comment) error {
	t := schema.SocialComment
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.Table, t.ID, t.UserID, t.NovelID, t.ChapterID, t.Body, t.CreatedAt, t.UpdatedAt,
	)

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		c.ID, c.UserID, c.NovelID, c.ChapterID, c.Body, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create comment: %w", err)
	}
	return nil
}

// FindByID retrieves a live comment with its writer's username joined in.
func (repository *repository) FindByID(context context.Context, id string) (*Comment, error) {
	t := schema.SocialComment
	u := schema.UsersAccount
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, u.%s, c.%s, c.%s, c.%s, c.%s, c.%s
		FROM %s c
		JOIN %s u ON u.%s = c.%s
		WHERE c.%s = $1 AND c.%s IS NULL`,
		t.ID, t.UserID, u.Username, t.NovelID, t.ChapterID, t.Body, t.CreatedAt, t.UpdatedAt,
		t.Table, u.Table, u.ID, t.UserID,
		t.ID, t.DeletedAt,
	)

	var c Comment
	err := repository.pool.QueryRow(context, query, id).Scan(
		&c.ID, &c.UserID, &c.Username, &c.NovelID, &c.ChapterID, &c.Body, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("comment")
		}
		return nil, fmt.Errorf("postgres: failed to find comment: %w", err)
	}
	return &c, nil
}

/*
ListByNovel pages through a discussion thread, newest first.

Description: A nil chapterID returns the novel-level thread (rows with no
chapter). A non-nil chapterID returns that chapter's thread.

Parameters:
  - context: context.Context
  - novelID: string
  - chapterID: *string
  - limit: int
  - offset: int

Returns:
  - []*Comment: Page of comments with usernames joined in
  - int: Total matching comments
*/
func (repository *repository) ListByNovel(context context.Context, novelID string, chapterID *string, limit, offset int) ([]*Comment, int, error) {
	t := schema.SocialComment
	u := schema.UsersAccount

	scope := fmt.Sprintf("c.%s IS NULL", t.ChapterID)
	args := []any{novelID, limit, offset}
	if chapterID != nil {
		scope = fmt.Sprintf("c.%s = $4", t.ChapterID)
		args = append(args, *chapterID)
	}

	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, u.%s, c.%s, c.%s, c.%s, c.%s, c.%s, COUNT(*) OVER()
		FROM %s c
		JOIN %s u ON u.%s = c.%s
		WHERE c.%s = $1 AND c.%s IS NULL AND %s
		ORDER BY c.%s DESC
		LIMIT $2 OFFSET $3`,
		t.ID, t.UserID, u.Username, t.NovelID, t.ChapterID, t.Body, t.CreatedAt, t.UpdatedAt,
		t.Table, u.Table, u.ID, t.UserID,
		t.NovelID, t.DeletedAt, scope,
		t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	var total int
	for rows.Next() {
		var c Comment
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Username, &c.NovelID, &c.ChapterID,
			&c.Body, &c.CreatedAt, &c.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate comments: %w", err)
	}
	return comments, total, nil
}

// UpdateBody replaces a comment's body.
func (repository *repository) UpdateBody(context context.Context, id, body string) error {
	t := schema.SocialComment
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.Body, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, body, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to update comment: %w", err)
	}
	return nil
}

// SoftDelete marks a comment as deleted.
func (repository *repository) SoftDelete(context context.Context, id string) error {
	t := schema.SocialComment
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.DeletedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete comment: %w", err)
	}
	return nil
}
