// Copyright (c) 2026 Noveris. All rights reserved.

package aggregate

import "context"

// # Recompute Data Access

// Repository defines the data access contract for aggregate recomputes.
type Repository interface {

	/*
		RecomputeTotals derives all three statistics from live chapters and
		writes them onto the novel row in one statement.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - Totals: The freshly derived values
		  - bool: false when the novel is missing or soft-deleted
		  - error: Storage failures
	*/
	RecomputeTotals(context context.Context, novelID string) (Totals, bool, error)

	/*
		RecomputeReaders derives only the readers statistic.

		Parameters:
		  - context: context.Context
		  - novelID: string (UUID)

		Returns:
		  - int64: The freshly derived readers value
		  - bool: false when the novel is missing or soft-deleted
		  - error: Storage failures
	*/
	RecomputeReaders(context context.Context, novelID string) (int64, bool, error)
}
