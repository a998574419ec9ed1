// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package view provides the PostgreSQL implementation of the dedup store.

The whole counting decision is one upsert. Two partial unique indexes on
stats.chapterview carve the table into identity scopes:

  - (chapterid, userid) WHERE userid IS NOT NULL for signed-in readers
  - (chapterid, clienttoken, ipaddress) WHERE userid IS NULL for everyone else

The anonymous index covers the IP-only fallback too, because the token and
IP columns are NOT NULL with an empty-string default. ON CONFLICT against
the matching index either refreshes an aged record or does nothing, and the
affected-row count is the verdict.
*/
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/database/schema"
	"github.com/noveris/noveris/pkg/uuidv7"
)

// # PostgreSQL Store

// store implements the [Store] interface using pgx.
type store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed dedup store.
func NewStore(pool *pgxpool.Pool) Store {
	return &store{pool: pool}
}

// # Store Implementation

/*
CheckAndRecord decides whether a view counts, in one atomic statement.

Description: Inserts the dedup record, or on conflict with the identity
scope's unique index refreshes the timestamp only when the existing record
has aged past the window. One affected row means the view counts; zero
means a fresh record absorbed it.
*/
func (store *store) CheckAndRecord(context context.Context, chapterID string, identity Identity, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)

	var query string
	var args []any

	if identity.IsAnonymous() {
		// Anonymous scope: (chapter, token, ip), with "" standing in for a
		// missing token so the IP-only fallback shares this path.
		query = fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, NULL, $3, $4, NOW())
			ON CONFLICT (%s, %s, %s) WHERE %s IS NULL
			DO UPDATE SET %s = NOW()
			WHERE %s.%s <= $5
		`,
			schema.StatsChapterView.Table,
			schema.StatsChapterView.ID,
			schema.StatsChapterView.ChapterID,
			schema.StatsChapterView.UserID,
			schema.StatsChapterView.ClientToken,
			schema.StatsChapterView.IPAddress,
			schema.StatsChapterView.ViewedAt,
			schema.StatsChapterView.ChapterID,
			schema.StatsChapterView.ClientToken,
			schema.StatsChapterView.IPAddress,
			schema.StatsChapterView.UserID,
			schema.StatsChapterView.ViewedAt,
			schema.StatsChapterView.Table,
			schema.StatsChapterView.ViewedAt,
		)
		args = []any{uuidv7.New(), chapterID, identity.ClientToken, identity.IPAddress, cutoff}
	} else {
		// Account scope: one record per (chapter, user) regardless of device.
		query = fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s, %s, %s)
			VALUES ($1, $2, $3, '', '', NOW())
			ON CONFLICT (%s, %s) WHERE %s IS NOT NULL
			DO UPDATE SET %s = NOW()
			WHERE %s.%s <= $4
		`,
			schema.StatsChapterView.Table,
			schema.StatsChapterView.ID,
			schema.StatsChapterView.ChapterID,
			schema.StatsChapterView.UserID,
			schema.StatsChapterView.ClientToken,
			schema.StatsChapterView.IPAddress,
			schema.StatsChapterView.ViewedAt,
			schema.StatsChapterView.ChapterID,
			schema.StatsChapterView.UserID,
			schema.StatsChapterView.UserID,
			schema.StatsChapterView.ViewedAt,
			schema.StatsChapterView.Table,
			schema.StatsChapterView.ViewedAt,
		)
		args = []any{uuidv7.New(), chapterID, identity.UserID, cutoff}
	}

	result, err := store.pool.Exec(context, query, args...)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to record view: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

/*
PurgeExpired removes dedup records past the retention cutoff.
*/
func (store *store) PurgeExpired(context context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`,
		schema.StatsChapterView.Table, schema.StatsChapterView.ViewedAt)

	result, err := store.pool.Exec(context, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to purge view records: %w", err)
	}

	return result.RowsAffected(), nil
}
