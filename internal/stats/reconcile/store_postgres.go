// Copyright (c) 2026 Noveris. All rights reserved.

package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/database/schema"
	"github.com/noveris/noveris/internal/stats/aggregate"
)

// # PostgreSQL Store

// store implements the [Store] interface using pgx.
type store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a PostgreSQL backed reconciliation store.
func NewStore(pool *pgxpool.Pool) Store {
	return &store{pool: pool}
}

// # Store Implementation

/*
LiveNovelIDs returns every live novel ID, oldest first.
*/
func (store *store) LiveNovelIDs(context context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s IS NULL
		ORDER BY %s ASC
	`,
		schema.CoreNovel.ID, schema.CoreNovel.Table,
		schema.CoreNovel.DeletedAt,
		schema.CoreNovel.CreatedAt,
	)

	rows, err := store.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list novel ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan novel id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

/*
StoredTotals reads the cached statistics columns as they currently stand.
*/
func (store *store) StoredTotals(context context.Context, novelID string) (aggregate.Totals, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s FROM %s
		WHERE %s = $1 AND %s IS NULL
	`,
		schema.CoreNovel.WordCount, schema.CoreNovel.TotalChapters, schema.CoreNovel.Readers,
		schema.CoreNovel.Table,
		schema.CoreNovel.ID, schema.CoreNovel.DeletedAt,
	)

	var totals aggregate.Totals
	err := store.pool.QueryRow(context, query, novelID).Scan(
		&totals.WordCount,
		&totals.TotalChapters,
		&totals.Readers,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return aggregate.Totals{}, apperr.NotFound("novel")
		}
		return aggregate.Totals{}, fmt.Errorf("postgres: failed to read stored totals: %w", err)
	}

	return totals, nil
}
