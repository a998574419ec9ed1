// Copyright (c) 2026 Noveris. All rights reserved.

package aggregate_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/stats/aggregate"
)

// # Test Fakes

// chapterRow is the minimal chapter shape the derivation reads.
type chapterRow struct {
	wordCount int64
	viewCount int64
	deleted   bool
}

// fakeRepo derives totals from an in-memory chapter set, mirroring the
// pure-function contract of the SQL implementation.
type fakeRepo struct {
	mu       sync.Mutex
	chapters map[string][]chapterRow // novelID -> chapters
	novels   map[string]aggregate.Totals
	failing  bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		chapters: make(map[string][]chapterRow),
		novels:   make(map[string]aggregate.Totals),
	}
}

func (r *fakeRepo) derive(novelID string) aggregate.Totals {
	var totals aggregate.Totals
	for _, c := range r.chapters[novelID] {
		if c.deleted {
			continue
		}
		totals.WordCount += c.wordCount
		totals.TotalChapters++
		totals.Readers += c.viewCount
	}
	return totals
}

func (r *fakeRepo) RecomputeTotals(_ context.Context, novelID string) (aggregate.Totals, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return aggregate.Totals{}, false, errors.New("storage down")
	}
	if _, ok := r.novels[novelID]; !ok {
		return aggregate.Totals{}, false, nil
	}

	totals := r.derive(novelID)
	r.novels[novelID] = totals
	return totals, true, nil
}

func (r *fakeRepo) RecomputeReaders(_ context.Context, novelID string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return 0, false, errors.New("storage down")
	}
	current, ok := r.novels[novelID]
	if !ok {
		return 0, false, nil
	}

	current.Readers = r.derive(novelID).Readers
	r.novels[novelID] = current
	return current.Readers, true, nil
}

// # Tests

/*
TestService_RecomputeNovel_DerivesFromChapters verifies that the totals are
pure functions of the live chapter set.
*/
func TestService_RecomputeNovel_DerivesFromChapters(t *testing.T) {
	repo := newFakeRepo()
	repo.novels["novel-1"] = aggregate.Totals{}
	repo.chapters["novel-1"] = []chapterRow{
		{wordCount: 500, viewCount: 3},
		{wordCount: 1200, viewCount: 7},
		{wordCount: 900, viewCount: 0},
	}

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	totals, err := service.RecomputeNovel(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Equal(t, int64(2600), totals.WordCount)
	assert.Equal(t, 3, totals.TotalChapters)
	assert.Equal(t, int64(10), totals.Readers)
}

/*
TestService_RecomputeNovel_ExcludesDeletedChapters verifies that soft-deleted
chapters never contribute to the derived values.
*/
func TestService_RecomputeNovel_ExcludesDeletedChapters(t *testing.T) {
	repo := newFakeRepo()
	repo.novels["novel-1"] = aggregate.Totals{}
	repo.chapters["novel-1"] = []chapterRow{
		{wordCount: 500, viewCount: 3},
		{wordCount: 1200, viewCount: 7, deleted: true},
	}

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	totals, err := service.RecomputeNovel(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Equal(t, int64(500), totals.WordCount)
	assert.Equal(t, 1, totals.TotalChapters)
	assert.Equal(t, int64(3), totals.Readers)
}

/*
TestService_RecomputeNovel_ZeroChapters verifies that a chapterless novel
lands on zeroed statistics.
*/
func TestService_RecomputeNovel_ZeroChapters(t *testing.T) {
	repo := newFakeRepo()
	repo.novels["novel-1"] = aggregate.Totals{WordCount: 999, TotalChapters: 9, Readers: 99}

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	totals, err := service.RecomputeNovel(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Zero(t, totals.WordCount)
	assert.Zero(t, totals.TotalChapters)
	assert.Zero(t, totals.Readers)
}

/*
TestService_RecomputeNovel_Idempotent verifies that repeated recomputes leave
the same values behind.
*/
func TestService_RecomputeNovel_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.novels["novel-1"] = aggregate.Totals{}
	repo.chapters["novel-1"] = []chapterRow{{wordCount: 700, viewCount: 4}}

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	first, err := service.RecomputeNovel(context.Background(), "novel-1")
	require.NoError(t, err)

	second, err := service.RecomputeNovel(context.Background(), "novel-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, repo.novels["novel-1"])
}

/*
TestService_RecomputeNovel_MissingNovelIsNoOp verifies the warn-and-continue
behavior for vanished novels.
*/
func TestService_RecomputeNovel_MissingNovelIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	totals, err := service.RecomputeNovel(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, aggregate.Totals{}, totals)
}

/*
TestService_UpdateReaders_OnlyTouchesReaders verifies the hot-path variant
leaves the other statistics alone.
*/
func TestService_UpdateReaders_OnlyTouchesReaders(t *testing.T) {
	repo := newFakeRepo()
	repo.novels["novel-1"] = aggregate.Totals{WordCount: 500, TotalChapters: 1, Readers: 0}
	repo.chapters["novel-1"] = []chapterRow{{wordCount: 9999, viewCount: 12}}

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	require.NoError(t, service.UpdateReaders(context.Background(), "novel-1"))

	got := repo.novels["novel-1"]
	assert.Equal(t, int64(12), got.Readers)
	assert.Equal(t, int64(500), got.WordCount) // untouched
	assert.Equal(t, 1, got.TotalChapters)      // untouched
}

/*
TestService_RecomputeNovel_StorageFailure verifies errors propagate to the
caller for retry or reconciliation.
*/
func TestService_RecomputeNovel_StorageFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failing = true

	service := aggregate.NewService(repo, slog.New(slog.DiscardHandler))

	_, err := service.RecomputeNovel(context.Background(), "novel-1")
	assert.Error(t, err)
}
