// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package reconcile repairs drifted derived statistics.

Derived novel state is refreshed synchronously on every mutation, but a
crash between the counter bump and the recompute, or a failed lifecycle
refresh, can leave a novel's cached statistics behind the truth. Because
every derived field is a pure function of live chapters, repair is just a
recompute; this package sweeps it across one novel or the whole catalogue,
on demand, behind admin-only endpoints.
*/
package reconcile

import "github.com/noveris/noveris/internal/stats/aggregate"

// Result reports the before and after statistics for one novel.
type Result struct {
	NovelID string           `json:"novel_id"`
	Before  aggregate.Totals `json:"before"`
	After   aggregate.Totals `json:"after"`
	Changed bool             `json:"changed"`
}

// Summary reports the outcome of a catalogue-wide sweep.
type Summary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
