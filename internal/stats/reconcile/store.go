// Copyright (c) 2026 Noveris. All rights reserved.

package reconcile

import (
	"context"

	"github.com/noveris/noveris/internal/stats/aggregate"
)

// # Sweep Data Access

// Store defines the data access contract for the reconciliation sweep.
type Store interface {

	/*
		LiveNovelIDs returns the IDs of every live novel in the catalogue.

		Parameters:
		  - context: context.Context

		Returns:
		  - []string: Novel UUIDs
		  - error: Storage failures
	*/
	LiveNovelIDs(context context.Context) ([]string, error)

	/*
		StoredTotals reads the currently cached statistics for a novel.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - aggregate.Totals: The cached values as stored, drifted or not
		  - error: apperr.NotFound if the novel is missing or soft-deleted
	*/
	StoredTotals(context context.Context, novelID string) (aggregate.Totals, error)
}

// Refresher re-derives and persists a novel's complete derived state.
// Implemented by the lifecycle coordinator.
type Refresher interface {
	Refresh(context context.Context, novelID string) (aggregate.Totals, error)
}
