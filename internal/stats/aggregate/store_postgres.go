// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package aggregate provides the PostgreSQL implementation of the recomputer.

Each recompute is a single UPDATE ... FROM with an aggregating sub-select
over the novel's live chapters, RETURNING the derived values. One statement
means no read-modify-write window: concurrent recomputes for the same novel
serialize on the row lock and both leave correct values behind.
*/
package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/database/schema"
)

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed recompute store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// # Repository Implementation

/*
RecomputeTotals derives and persists all three statistics in one statement.

Description: The aggregating sub-select coalesces to zero, so a novel whose
chapters were all deleted lands back on zeroed statistics rather than stale
ones.
*/
func (repository *repository) RecomputeTotals(context context.Context, novelID string) (Totals, bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s n
		SET %s = agg.words, %s = agg.chapters, %s = agg.readers, %s = NOW()
		FROM (
			SELECT
				COALESCE(SUM(c.%s), 0)::bigint AS words,
				COUNT(c.%s)::int AS chapters,
				COALESCE(SUM(c.%s), 0)::bigint AS readers
			FROM %s c
			WHERE c.%s = $1 AND c.%s IS NULL
		) agg
		WHERE n.%s = $1 AND n.%s IS NULL
		RETURNING agg.words, agg.chapters, agg.readers
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.WordCount, schema.CoreNovel.TotalChapters, schema.CoreNovel.Readers,
		schema.CoreNovel.UpdatedAt,
		schema.CoreChapter.WordCount,
		schema.CoreChapter.ID,
		schema.CoreChapter.ViewCount,
		schema.CoreChapter.Table,
		schema.CoreChapter.NovelID, schema.CoreChapter.DeletedAt,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	var totals Totals
	err := repository.pool.QueryRow(context, query, novelID).Scan(
		&totals.WordCount,
		&totals.TotalChapters,
		&totals.Readers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Totals{}, false, nil
		}
		return Totals{}, false, fmt.Errorf("postgres: failed to recompute novel totals: %w", err)
	}

	return totals, true, nil
}

/*
RecomputeReaders derives and persists only the readers statistic.

Description: Hot-path variant used after every counted view; skips the
word-count scan that the full recompute pays for.
*/
func (repository *repository) RecomputeReaders(context context.Context, novelID string) (int64, bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s n
		SET %s = agg.readers
		FROM (
			SELECT COALESCE(SUM(c.%s), 0)::bigint AS readers
			FROM %s c
			WHERE c.%s = $1 AND c.%s IS NULL
		) agg
		WHERE n.%s = $1 AND n.%s IS NULL
		RETURNING agg.readers
	`,
		schema.CoreNovel.Table,
		schema.CoreNovel.Readers,
		schema.CoreChapter.ViewCount,
		schema.CoreChapter.Table,
		schema.CoreChapter.NovelID, schema.CoreChapter.DeletedAt,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	var readers int64
	err := repository.pool.QueryRow(context, query, novelID).Scan(&readers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("postgres: failed to recompute novel readers: %w", err)
	}

	return readers, true, nil
}
