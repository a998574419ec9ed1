// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package chapter provides the PostgreSQL implementation for chapter data access.

The sequence-uniqueness invariant is enforced by a partial unique index on
(novelid, seq, isextra) WHERE deletedat IS NULL; this repository translates
the resulting SQLSTATE 23505 into a client-visible conflict. The viewcount
column is only ever written through a relative increment so concurrent
readers can never lose updates.
*/
package chapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/database/schema"
	"github.com/noveris/noveris/internal/platform/dberr"
)

// seqConflictMessage is the client-facing text for sequence collisions.
const seqConflictMessage = "A chapter with this sequence number already exists"

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed chapter store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// # Repository Implementation

/*
ListByNovel retrieves live chapter metadata for a novel.

Description: Bodies are excluded from the select list to keep list
responses light. Ordered by reading position, with extras after regular
chapters at the same sequence number.

Parameters:
  - context: context.Context
  - novelID: string (Owner ID)
  - f: ChapterFilter (Extras and sorting)
  - limit: int
  - offset: int

Returns:
  - []*Chapter: Slice of chapters without bodies
  - int: Total matching chapters
*/
func (repository *repository) ListByNovel(context context.Context, novelID string, f ChapterFilter, limit, offset int) ([]*Chapter, int, error) {

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s,
			COUNT(*) OVER() AS total_count
		FROM %s c
		WHERE c.%s = $1 AND c.%s IS NULL
	`,
		schema.CoreChapter.ID,
		schema.CoreChapter.NovelID,
		schema.CoreChapter.Seq,
		schema.CoreChapter.IsExtra,
		schema.CoreChapter.Title,
		schema.CoreChapter.WordCount,
		schema.CoreChapter.ViewCount,
		schema.CoreChapter.IsPremium,
		schema.CoreChapter.Price,
		schema.CoreChapter.CreatedAt,
		schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.NovelID,
		schema.CoreChapter.DeletedAt,
	))
	args = append(args, novelID)
	argID++

	// Extras filter injection
	if f.ExtrasOnly {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = TRUE", schema.CoreChapter.IsExtra))
	}

	// Ordering and pagination limits
	sortDir := "ASC"
	if strings.ToLower(f.SortDir) == "desc" {
		sortDir = "DESC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s %s, c.%s %s",
		schema.CoreChapter.Seq, sortDir, schema.CoreChapter.IsExtra, sortDir))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list chapters: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var chapters []*Chapter
	var totalCount int

	for rows.Next() {
		var c Chapter
		err := rows.Scan(
			&c.ID,
			&c.NovelID,
			&c.Seq,
			&c.IsExtra,
			&c.Title,
			&c.WordCount,
			&c.ViewCount,
			&c.IsPremium,
			&c.Price,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan chapter: %w", err)
		}
		chapters = append(chapters, &c)
	}

	return chapters, totalCount, nil
}

/*
FindByID returns a single chapter including its body text.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Chapter: Complete entity
  - error: apperr.NotFound on absent rows
*/
func (repository *repository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s, c.%s,
			c.%s, c.%s, c.%s
		FROM %s c
		WHERE c.%s = $1 AND c.%s IS NULL
	`,
		schema.CoreChapter.ID, schema.CoreChapter.NovelID, schema.CoreChapter.Seq,
		schema.CoreChapter.IsExtra, schema.CoreChapter.Title, schema.CoreChapter.Body,
		schema.CoreChapter.WordCount, schema.CoreChapter.ViewCount,
		schema.CoreChapter.IsPremium, schema.CoreChapter.Price,
		schema.CoreChapter.CreatedAt, schema.CoreChapter.UpdatedAt, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	var c Chapter
	err := repository.pool.QueryRow(context, query, id).Scan(
		&c.ID,
		&c.NovelID,
		&c.Seq,
		&c.IsExtra,
		&c.Title,
		&c.Body,
		&c.WordCount,
		&c.ViewCount,
		&c.IsPremium,
		&c.Price,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("chapter")
		}
		return nil, fmt.Errorf("postgres: failed to find chapter by id: %w", err)
	}

	return &c, nil
}

/*
Create inserts a new chapter record.

Description: The view counter starts at its database default of zero. A
sequence collision among the novel's live chapters surfaces as a conflict.

Parameters:
  - context: context.Context
  - c: *Chapter

Returns:
  - error: apperr.Conflict on (novel, seq, extra) collision
*/
func (repository *repository) Create(context context.Context, c *Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.ID,
		schema.CoreChapter.NovelID,
		schema.CoreChapter.Seq,
		schema.CoreChapter.IsExtra,
		schema.CoreChapter.Title,
		schema.CoreChapter.Body,
		schema.CoreChapter.WordCount,
		schema.CoreChapter.IsPremium,
		schema.CoreChapter.Price,
		schema.CoreChapter.CreatedAt,
		schema.CoreChapter.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		c.ID,
		c.NovelID,
		c.Seq,
		c.IsExtra,
		c.Title,
		c.Body,
		c.WordCount,
		c.IsPremium,
		c.Price,
	).Scan(&c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(seqConflictMessage)
		}
		return fmt.Errorf("postgres: failed to create chapter: %w", err)
	}

	return nil
}

/*
Update overwrites an existing chapter's content and position.

Description: Writes seq, extra flag, title, body, derived word count, and
monetisation fields. The view counter is deliberately excluded.

Parameters:
  - context: context.Context
  - c: *Chapter

Returns:
  - error: apperr.NotFound or apperr.Conflict on sequence collision
*/
func (repository *repository) Update(context context.Context, c *Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $8 AND %s IS NULL
	`,
		schema.CoreChapter.Table,
		schema.CoreChapter.Seq, schema.CoreChapter.IsExtra, schema.CoreChapter.Title,
		schema.CoreChapter.Body, schema.CoreChapter.WordCount,
		schema.CoreChapter.IsPremium, schema.CoreChapter.Price,
		schema.CoreChapter.UpdatedAt,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query,
		c.Seq,
		c.IsExtra,
		c.Title,
		c.Body,
		c.WordCount,
		c.IsPremium,
		c.Price,
		c.ID,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(seqConflictMessage)
		}
		return fmt.Errorf("postgres: failed to update chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	return nil
}

/*
SoftDelete hides a chapter record.
*/
func (repository *repository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("chapter")
	}

	return nil
}

/*
SoftDeleteByNovel hides every live chapter of a novel in one statement.
*/
func (repository *repository) SoftDeleteByNovel(context context.Context, novelID string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreChapter.Table, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.NovelID, schema.CoreChapter.DeletedAt)

	result, err := repository.pool.Exec(context, query, novelID)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to bulk delete chapters: %w", err)
	}

	return result.RowsAffected(), nil
}

// # Stats Subsystem Hooks

/*
IncrementViewCount atomically bumps a chapter's view counter.

Description: A relative in-database increment prevents lost updates under
concurrent traffic. Returns the owning novel's ID so the view pipeline can
continue without an extra lookup.
*/
func (repository *repository) IncrementViewCount(context context.Context, id string) (string, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1
		WHERE %s = $1 AND %s IS NULL
		RETURNING %s
	`,
		schema.CoreChapter.Table, schema.CoreChapter.ViewCount, schema.CoreChapter.ViewCount,
		schema.CoreChapter.ID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.NovelID,
	)

	var novelID string
	err := repository.pool.QueryRow(context, query, id).Scan(&novelID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("chapter")
		}
		return "", fmt.Errorf("postgres: failed to increment chapter view count: %w", err)
	}

	return novelID, nil
}

/*
LatestLiveID derives the novel's latest-chapter pointer from live rows.

Description: Highest sequence wins; at equal sequence a regular chapter
outranks an extra. Returns "" when the novel has no live chapters.
*/
func (repository *repository) LatestLiveID(context context.Context, novelID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NULL
		ORDER BY %s DESC, %s ASC
		LIMIT 1
	`,
		schema.CoreChapter.ID, schema.CoreChapter.Table,
		schema.CoreChapter.NovelID, schema.CoreChapter.DeletedAt,
		schema.CoreChapter.Seq, schema.CoreChapter.IsExtra,
	)

	var id string
	err := repository.pool.QueryRow(context, query, novelID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("postgres: failed to find latest chapter: %w", err)
	}

	return id, nil
}

/*
ClearExtraFlags rejoins side stories to the main numbering.

Description: Runs in a transaction. An extra can share its seq with a live
regular chapter, and the flag clear would re-file it under an occupied
(novel, seq, regular) slot. Colliding extras are first renumbered past the
highest live seq per [PlanExtraPromotion], so the final flag clear cannot
trip the live-row numbering index.

Parameters:
  - context: context.Context
  - novelID: string (UUID)

Returns:
  - int64: Number of extras cleared
  - error: Storage failures
*/
func (repository *repository) ClearExtraFlags(context context.Context, novelID string) (int64, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to begin extra flag clear: %w", err)
	}
	defer transaction.Rollback(context)

	ch := schema.CoreChapter
	liveQuery := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE %s = $1 AND %s IS NULL",
		ch.ID, ch.Seq, ch.IsExtra, ch.Table, ch.NovelID, ch.DeletedAt,
	)
	rows, err := transaction.Query(context, liveQuery, novelID)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to read live numbering: %w", err)
	}

	var live []*Chapter
	for rows.Next() {
		row := &Chapter{}
		if err := rows.Scan(&row.ID, &row.Seq, &row.IsExtra); err != nil {
			rows.Close()
			return 0, fmt.Errorf("postgres: failed to scan live numbering: %w", err)
		}
		live = append(live, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("postgres: failed to read live numbering: %w", err)
	}

	renumberQuery := fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2",
		ch.Table, ch.Seq, ch.UpdatedAt, ch.ID,
	)
	for _, move := range PlanExtraPromotion(live) {
		if _, err := transaction.Exec(context, renumberQuery, move.NewSeq, move.ChapterID); err != nil {
			return 0, fmt.Errorf("postgres: failed to renumber colliding extra: %w", err)
		}
	}

	clearQuery := fmt.Sprintf(
		"UPDATE %s SET %s = FALSE, %s = NOW() WHERE %s = $1 AND %s = TRUE AND %s IS NULL",
		ch.Table, ch.IsExtra, ch.UpdatedAt, ch.NovelID, ch.IsExtra, ch.DeletedAt,
	)
	tag, err := transaction.Exec(context, clearQuery, novelID)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to clear extra flags: %w", err)
	}

	if err := transaction.Commit(context); err != nil {
		return 0, fmt.Errorf("postgres: failed to commit extra flag clear: %w", err)
	}

	return tag.RowsAffected(), nil
}
