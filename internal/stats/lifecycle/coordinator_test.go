// Copyright (c) 2026 Noveris. All rights reserved.

package lifecycle_test

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/platform/metrics"
	"github.com/noveris/noveris/internal/stats/aggregate"
	"github.com/noveris/noveris/internal/stats/lifecycle"
)

// # Test Fakes

// fakeChapter is the minimal chapter shape the coordinator derives from.
type fakeChapter struct {
	id        string
	seq       int
	isExtra   bool
	wordCount int64
	viewCount int64
}

// world is a shared in-memory content state plus a call journal used to
// assert step ordering.
type world struct {
	mu       sync.Mutex
	chapters map[string][]fakeChapter // novelID -> live chapters
	pointers map[string]*string
	totals   map[string]aggregate.Totals
	journal  []string
	scanErr  error
}

func newWorld() *world {
	return &world{
		chapters: make(map[string][]fakeChapter),
		pointers: make(map[string]*string),
		totals:   make(map[string]aggregate.Totals),
	}
}

func (w *world) log(step string) {
	w.journal = append(w.journal, step)
}

func (w *world) LatestLiveID(_ context.Context, novelID string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.scanErr != nil {
		return "", w.scanErr
	}
	w.log("derive_pointer")

	live := append([]fakeChapter(nil), w.chapters[novelID]...)
	if len(live) == 0 {
		return "", nil
	}

	// Highest seq wins; regular outranks extra at equal seq.
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].seq != live[j].seq {
			return live[i].seq > live[j].seq
		}
		return !live[i].isExtra && live[j].isExtra
	})
	return live[0].id, nil
}

func (w *world) ClearExtraFlags(_ context.Context, novelID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.log("clear_extras")

	// Mirror the store: extras colliding with a regular seq renumber past
	// the highest live seq before the flag clear.
	regular := make(map[int]bool)
	maxSeq := 0
	for _, c := range w.chapters[novelID] {
		if !c.isExtra {
			regular[c.seq] = true
		}
		if c.seq > maxSeq {
			maxSeq = c.seq
		}
	}

	var cleared int64
	for i := range w.chapters[novelID] {
		c := &w.chapters[novelID][i]
		if !c.isExtra {
			continue
		}
		if regular[c.seq] {
			maxSeq++
			c.seq = maxSeq
		}
		c.isExtra = false
		cleared++
	}
	return cleared, nil
}

func (w *world) SetLatestChapter(_ context.Context, novelID string, chapterID *string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.log("persist_pointer")
	w.pointers[novelID] = chapterID
	return nil
}

func (w *world) RecomputeNovel(_ context.Context, novelID string) (aggregate.Totals, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.log("recompute")
	var totals aggregate.Totals
	for _, c := range w.chapters[novelID] {
		totals.WordCount += c.wordCount
		totals.TotalChapters++
		totals.Readers += c.viewCount
	}
	w.totals[novelID] = totals
	return totals, nil
}

func newCoordinator(w *world) *lifecycle.Coordinator {
	collector := metrics.NewCollector(prometheus.NewRegistry())
	return lifecycle.NewCoordinator(w, w, w, collector, slog.New(slog.DiscardHandler))
}

// # Tests

/*
TestCoordinator_FirstChapterRelease verifies the derived state after a
novel's first chapter lands.
*/
func TestCoordinator_FirstChapterRelease(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{{id: "ch-1", seq: 1, wordCount: 500}}

	newCoordinator(w).OnChapterCreated(context.Background(), "novel-1")

	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-1", *w.pointers["novel-1"])
	assert.Equal(t, aggregate.Totals{WordCount: 500, TotalChapters: 1, Readers: 0}, w.totals["novel-1"])
}

/*
TestCoordinator_DeleteLatestReassignsPointer verifies the pointer falls back
to the previous chapter when the latest one is deleted.
*/
func TestCoordinator_DeleteLatestReassignsPointer(t *testing.T) {
	w := newWorld()
	// Chapter #2 was just soft-deleted; only #1 remains live.
	w.chapters["novel-1"] = []fakeChapter{{id: "ch-1", seq: 1, wordCount: 500}}

	newCoordinator(w).OnChapterDeleted(context.Background(), "novel-1")

	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-1", *w.pointers["novel-1"])
	assert.Equal(t, 1, w.totals["novel-1"].TotalChapters)
}

/*
TestCoordinator_LastChapterDeletedClearsPointer verifies the pointer goes
null and statistics zero out when no live chapters remain.
*/
func TestCoordinator_LastChapterDeletedClearsPointer(t *testing.T) {
	w := newWorld()
	w.pointers["novel-1"] = strPtr("ch-1")
	w.totals["novel-1"] = aggregate.Totals{WordCount: 500, TotalChapters: 1}

	newCoordinator(w).OnChaptersBulkDeleted(context.Background(), "novel-1")

	assert.Nil(t, w.pointers["novel-1"])
	assert.Equal(t, aggregate.Totals{}, w.totals["novel-1"])
}

/*
TestCoordinator_RegularOutranksExtraAtEqualSeq verifies the pointer tie-break
between a chapter and a side story sharing a sequence number.
*/
func TestCoordinator_RegularOutranksExtraAtEqualSeq(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{
		{id: "ch-extra", seq: 7, isExtra: true},
		{id: "ch-main", seq: 7},
	}

	newCoordinator(w).OnChapterEdited(context.Background(), "novel-1")

	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-main", *w.pointers["novel-1"])
}

/*
TestCoordinator_PointerPersistsBeforeRecompute verifies the refresh ordering:
a reader must never observe fresh totals alongside a stale pointer.
*/
func TestCoordinator_PointerPersistsBeforeRecompute(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{{id: "ch-1", seq: 1}}

	newCoordinator(w).OnChapterCreated(context.Background(), "novel-1")

	assert.Equal(t, []string{"derive_pointer", "persist_pointer", "recompute"}, w.journal)
}

/*
TestCoordinator_ResumedNovelClearsExtras verifies that a completed novel
returning to serialisation folds its side stories back in before the refresh.
*/
func TestCoordinator_ResumedNovelClearsExtras(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{
		{id: "ch-1", seq: 1},
		{id: "ch-side", seq: 2, isExtra: true},
	}

	newCoordinator(w).OnNovelStatusChanged(context.Background(), "novel-1", "completed", "ongoing")

	for _, c := range w.chapters["novel-1"] {
		assert.False(t, c.isExtra)
	}
	assert.Equal(t, "clear_extras", w.journal[0])
	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-side", *w.pointers["novel-1"]) // now highest seq, no longer extra
}

/*
TestCoordinator_ResumedNovelRenumbersCollidingExtras verifies that a side
story sharing its seq with a regular chapter survives the fold-in: it moves
past the highest live seq instead of vanishing into a numbering conflict.
*/
func TestCoordinator_ResumedNovelRenumbersCollidingExtras(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{
		{id: "ch-5", seq: 5},
		{id: "ch-side", seq: 5, isExtra: true},
	}

	newCoordinator(w).OnNovelStatusChanged(context.Background(), "novel-1", "completed", "ongoing")

	seen := make(map[int]int)
	for _, c := range w.chapters["novel-1"] {
		assert.False(t, c.isExtra)
		seen[c.seq]++
	}
	assert.Equal(t, map[int]int{5: 1, 6: 1}, seen)
	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-side", *w.pointers["novel-1"])
}

/*
TestCoordinator_OtherTransitionsSkipExtraClearing verifies that only the
completed-to-active transition touches extra flags.
*/
func TestCoordinator_OtherTransitionsSkipExtraClearing(t *testing.T) {
	w := newWorld()
	w.chapters["novel-1"] = []fakeChapter{{id: "ch-side", seq: 2, isExtra: true}}

	newCoordinator(w).OnNovelStatusChanged(context.Background(), "novel-1", "ongoing", "completed")

	assert.True(t, w.chapters["novel-1"][0].isExtra)
	assert.NotContains(t, w.journal, "clear_extras")
}

/*
TestCoordinator_ScanFailureSkipsPointerWrite verifies that a failed pointer
derivation leaves both the pointer and the totals untouched.
*/
func TestCoordinator_ScanFailureSkipsPointerWrite(t *testing.T) {
	w := newWorld()
	w.scanErr = errors.New("storage down")
	w.pointers["novel-1"] = strPtr("ch-1")

	newCoordinator(w).OnChapterCreated(context.Background(), "novel-1")

	require.NotNil(t, w.pointers["novel-1"])
	assert.Equal(t, "ch-1", *w.pointers["novel-1"])
	assert.Empty(t, w.journal)
}

func strPtr(s string) *string { return &s }
