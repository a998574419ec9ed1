// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package novel provides the PostgreSQL implementation for the catalogue's data access.

It leans on a handful of Postgres capabilities for the browsing experience:
  - Window Functions: Calculates total result counts without a separate 'COUNT' query.
  - Partial Indexes: Slug uniqueness is enforced among live rows only.
  - Soft Deletes: All reads exclude rows with a deletion timestamp.

Derived statistic columns (wordcount, totalchapters, readers) are written by
the aggregate recomputer only; this repository never touches them outside of
row creation.
*/
package novel

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

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed novel store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// novelColumns is the canonical select list shared by the read queries.
func novelColumns(alias string) string {
	cols := schema.CoreNovel.Columns()
	prefixed := make([]string, len(cols))
	for i, c := range cols {
		prefixed[i] = alias + "." + c
	}
	return strings.Join(prefixed, ", ")
}

// scanNovel hydrates a [Novel] from a row using the canonical column order.
func scanNovel(row pgx.Row, extra ...any) (*Novel, error) {
	var n Novel
	targets := []any{
		&n.ID, &n.AuthorID, &n.Title, &n.Slug, &n.Description, &n.Status,
		&n.WordCount, &n.TotalChapters, &n.Readers, &n.LatestChapterID,
		&n.LastActiveAt, &n.CreatedAt, &n.UpdatedAt, &n.DeletedAt,
	}
	targets = append(targets, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &n, nil
}

// # Repository Implementation

/*
List retrieves novels matching the filter.

Description: Returns full novel rows including derived statistics, with a
window-function total for pagination metadata.

Parameters:
  - context: context.Context
  - f: Filter (status / author / title search / sorting)
  - limit: int
  - offset: int

Returns:
  - []*Novel: Slice of novels
  - int: Total matching novels
*/
func (repository *repository) List(context context.Context, f Filter, limit, offset int) ([]*Novel, int, error) {

	// Query construction
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s n
		WHERE n.%s IS NULL
	`,
		novelColumns("n"),
		schema.CoreNovel.Table,
		schema.CoreNovel.DeletedAt,
	))

	// Status filter injection
	if len(f.Status) > 0 {
		placeholders := make([]string, len(f.Status))
		for i, s := range f.Status {
			placeholders[i] = fmt.Sprintf("$%d", argID)
			args = append(args, string(s))
			argID++
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s IN (%s)", schema.CoreNovel.Status, strings.Join(placeholders, ", ")))
	}

	// Author ownership filter
	if f.AuthorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s = $%d", schema.CoreNovel.AuthorID, argID))
		args = append(args, f.AuthorID)
		argID++
	}

	// Title search
	if f.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND n.%s ILIKE $%d", schema.CoreNovel.Title, argID))
		args = append(args, "%"+f.Query+"%")
		argID++
	}

	// Ordering
	sortColumn := schema.CoreNovel.LastActiveAt
	switch f.Sort {
	case "readers":
		sortColumn = schema.CoreNovel.Readers
	case "words":
		sortColumn = schema.CoreNovel.WordCount
	case "created":
		sortColumn = schema.CoreNovel.CreatedAt
	}

	sortDir := "DESC"
	if strings.ToLower(f.SortDir) == "asc" {
		sortDir = "ASC"
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY n.%s %s", sortColumn, sortDir))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list novels: %w", err)
	}
	defer rows.Close()

	// Row iteration and entity hydration
	var novels []*Novel
	var totalCount int

	for rows.Next() {
		n, err := scanNovel(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan novel: %w", err)
		}
		novels = append(novels, n)
	}

	return novels, totalCount, nil
}

/*
FindByID returns the novel with the given unique identifier.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Novel: A complete mapping of requested novel data.
  - error: apperr.NotFound on absent rows.
*/
func (repository *repository) FindByID(context context.Context, id string) (*Novel, error) {
	return repository.findByColumn(context, schema.CoreNovel.ID, id)
}

/*
FindBySlug returns the novel with the given URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Novel: A complete mapping of requested novel data.
  - error: apperr.NotFound on absent rows.
*/
func (repository *repository) FindBySlug(context context.Context, slug string) (*Novel, error) {
	return repository.findByColumn(context, schema.CoreNovel.Slug, slug)
}

// findByColumn runs the shared single-row lookup for exact-match columns.
func (repository *repository) findByColumn(context context.Context, column, value string) (*Novel, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s n
		WHERE n.%s = $1 AND n.%s IS NULL
	`,
		novelColumns("n"),
		schema.CoreNovel.Table,
		column,
		schema.CoreNovel.DeletedAt,
	)

	n, err := scanNovel(repository.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("novel")
		}
		return nil, fmt.Errorf("postgres: failed to find novel by %s: %w", column, err)
	}

	return n, nil
}

/*
Create inserts a new novel record.

Description: Derived statistic columns are initialised by their database
defaults (zero), never from the entity, so a client can not seed view or
word counts at creation time.

Parameters:
  - context: context.Context
  - n: *Novel

Returns:
  - error: apperr.Conflict when the slug collides with a live novel.
*/
func (repository *repository) Create(context context.Context, n *Novel) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s, %s
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.ID,
		schema.CoreNovel.AuthorID,
		schema.CoreNovel.Title,
		schema.CoreNovel.Slug,
		schema.CoreNovel.Description,
		schema.CoreNovel.Status,
		schema.CoreNovel.LastActiveAt,
		schema.CoreNovel.CreatedAt,
		schema.CoreNovel.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		n.ID,
		n.AuthorID,
		n.Title,
		n.Slug,
		n.Description,
		n.Status,
	).Scan(&n.LastActiveAt, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A novel with this slug already exists")
		}
		return fmt.Errorf("postgres: failed to create novel: %w", err)
	}

	return nil
}

/*
Update overwrites the mutable metadata of an existing novel.

Description: Writes title, slug, description, and status. Derived statistic
columns and the latest-chapter pointer are owned by the stats subsystem and
are deliberately not part of this statement.

Parameters:
  - context: context.Context
  - n: *Novel

Returns:
  - error: apperr.NotFound if targeting a missing row.
*/
func (repository *repository) Update(context context.Context, n *Novel) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $5 AND %s IS NULL
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.Title, schema.CoreNovel.Slug, schema.CoreNovel.Description, schema.CoreNovel.Status,
		schema.CoreNovel.UpdatedAt,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	result, err := repository.pool.Exec(context, query,
		n.Title,
		n.Slug,
		n.Description,
		n.Status,
		n.ID,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("A novel with this slug already exists")
		}
		return fmt.Errorf("postgres: failed to update novel: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("novel")
	}

	return nil
}

/*
SoftDelete hides a novel record.
*/
func (repository *repository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreNovel.Table, schema.CoreNovel.DeletedAt, schema.CoreNovel.ID, schema.CoreNovel.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete novel: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("novel")
	}

	return nil
}

// # Stats Subsystem Hooks

/*
SetLatestChapter persists the latest-chapter pointer.

Description: The pointer is always re-derived from live chapters by the
lifecycle coordinator; this method only stores the result. Writing to a
soft-deleted novel is a silent no-op.
*/
func (repository *repository) SetLatestChapter(context context.Context, novelID string, chapterID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s IS NULL`,
		schema.CoreNovel.Table,
		schema.CoreNovel.LatestChapterID, schema.CoreNovel.UpdatedAt,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, chapterID, novelID)
	if err != nil {
		return fmt.Errorf("postgres: failed to set latest chapter: %w", err)
	}

	return nil
}

/*
TouchLastActive stamps reader activity on a novel.

Description: Called from the view counting pipeline after a counted view.
Intentionally does not bump the updatedat column, which tracks metadata
edits only.
*/
func (repository *repository) TouchLastActive(context context.Context, novelID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.CoreNovel.Table,
		schema.CoreNovel.LastActiveAt,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, novelID)
	if err != nil {
		return fmt.Errorf("postgres: failed to touch novel activity: %w", err)
	}

	return nil
}
