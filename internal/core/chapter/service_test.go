// Copyright (c) 2026 Noveris. All rights reserved.

package chapter_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/core/chapter"
	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
)

// # Test Fakes

func nowStamp() time.Time { return time.Now() }

// fakeChapterRepo is an in-memory chapter store.
type fakeChapterRepo struct {
	rows map[string]*chapter.Chapter
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{rows: make(map[string]*chapter.Chapter)}
}

func (f *fakeChapterRepo) ListByNovel(_ context.Context, novelID string, _ chapter.ChapterFilter, _, _ int) ([]*chapter.Chapter, int, error) {
	var out []*chapter.Chapter
	for _, c := range f.rows {
		if c.NovelID == novelID && c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeChapterRepo) FindByID(_ context.Context, id string) (*chapter.Chapter, error) {
	c, ok := f.rows[id]
	if !ok || c.DeletedAt != nil {
		return nil, apperr.NotFound("chapter")
	}
	copied := *c
	return &copied, nil
}

func (f *fakeChapterRepo) Create(_ context.Context, c *chapter.Chapter) error {
	copied := *c
	f.rows[c.ID] = &copied
	return nil
}

func (f *fakeChapterRepo) Update(_ context.Context, c *chapter.Chapter) error {
	copied := *c
	f.rows[c.ID] = &copied
	return nil
}

func (f *fakeChapterRepo) SoftDelete(_ context.Context, id string) error {
	if c, ok := f.rows[id]; ok {
		now := nowStamp()
		c.DeletedAt = &now
	}
	return nil
}

func (f *fakeChapterRepo) SoftDeleteByNovel(_ context.Context, novelID string) (int64, error) {
	var n int64
	for _, c := range f.rows {
		if c.NovelID == novelID && c.DeletedAt == nil {
			now := nowStamp()
			c.DeletedAt = &now
			n++
		}
	}
	return n, nil
}

func (f *fakeChapterRepo) IncrementViewCount(_ context.Context, id string) (string, error) {
	c, ok := f.rows[id]
	if !ok || c.DeletedAt != nil {
		return "", apperr.NotFound("chapter")
	}
	c.ViewCount++
	return c.NovelID, nil
}

func (f *fakeChapterRepo) LatestLiveID(_ context.Context, novelID string) (string, error) {
	best := ""
	bestSeq := -1
	for _, c := range f.rows {
		if c.NovelID == novelID && c.DeletedAt == nil && c.Seq > bestSeq {
			best, bestSeq = c.ID, c.Seq
		}
	}
	return best, nil
}

func (f *fakeChapterRepo) ClearExtraFlags(_ context.Context, novelID string) (int64, error) {
	var n int64
	for _, c := range f.rows {
		if c.NovelID == novelID && c.DeletedAt == nil && c.IsExtra {
			c.IsExtra = false
			n++
		}
	}
	return n, nil
}

// fakeNovels resolves novels for the ownership check.
type fakeNovels struct {
	novels map[string]*novel.Novel
}

func (f *fakeNovels) FindByID(_ context.Context, id string) (*novel.Novel, error) {
	n, ok := f.novels[id]
	if !ok {
		return nil, apperr.NotFound("novel")
	}
	return n, nil
}

// fakeCoordinator records lifecycle notifications in order.
type fakeCoordinator struct {
	events []string
}

func (f *fakeCoordinator) OnChapterCreated(_ context.Context, novelID string) {
	f.events = append(f.events, "created:"+novelID)
}

func (f *fakeCoordinator) OnChapterEdited(_ context.Context, novelID string) {
	f.events = append(f.events, "edited:"+novelID)
}

func (f *fakeCoordinator) OnChapterDeleted(_ context.Context, novelID string) {
	f.events = append(f.events, "deleted:"+novelID)
}

// # Harness

type chapterHarness struct {
	repo        *fakeChapterRepo
	coordinator *fakeCoordinator
	service     *chapter.Service
}

func newChapterHarness(t *testing.T) *chapterHarness {
	t.Helper()

	repo := newFakeChapterRepo()
	coordinator := &fakeCoordinator{}
	novels := &fakeNovels{novels: map[string]*novel.Novel{
		"novel-1": {ID: "novel-1", AuthorID: "author-1", Title: "Ashes of the Ninth Spring"},
	}}

	logger := slog.New(slog.DiscardHandler)
	return &chapterHarness{
		repo:        repo,
		coordinator: coordinator,
		service:     chapter.NewService(repo, novels, coordinator, logger),
	}
}

func owner() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "author-1", Role: string(sec.RoleAuthor)}
}

// # Tests

/*
TestCreateChapter_DerivesWordCount verifies the word count is always computed
from the body, never trusted from the input.
*/
func TestCreateChapter_DerivesWordCount(t *testing.T) {
	h := newChapterHarness(t)

	c := &chapter.Chapter{
		NovelID:   "novel-1",
		Seq:       1,
		Title:     "The Long Road",
		Body:      "dawn broke over the pass",
		WordCount: 9999, // Client-supplied garbage.
	}
	require.NoError(t, h.service.CreateChapter(context.Background(), c, owner()))

	assert.Equal(t, 5, c.WordCount)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{"created:novel-1"}, h.coordinator.events)
}

/*
TestCreateChapter_RejectsEmptyBody verifies validation failures leave no row
behind and fire no lifecycle event.
*/
func TestCreateChapter_RejectsEmptyBody(t *testing.T) {
	h := newChapterHarness(t)

	c := &chapter.Chapter{NovelID: "novel-1", Seq: 1, Title: "Empty"}
	err := h.service.CreateChapter(context.Background(), c, owner())

	require.Error(t, err)
	assert.Empty(t, h.repo.rows)
	assert.Empty(t, h.coordinator.events)
}

/*
TestCreateChapter_OwnershipEnforced verifies a non-owning member cannot
publish, while a moderator can.
*/
func TestCreateChapter_OwnershipEnforced(t *testing.T) {
	h := newChapterHarness(t)

	stranger := &sec.AuthClaims{UserID: "reader-9", Role: string(sec.RoleMember)}
	err := h.service.CreateChapter(context.Background(), &chapter.Chapter{
		NovelID: "novel-1", Seq: 1, Body: "text",
	}, stranger)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	moderator := &sec.AuthClaims{UserID: "mod-1", Role: string(sec.RoleModerator)}
	err = h.service.CreateChapter(context.Background(), &chapter.Chapter{
		NovelID: "novel-1", Seq: 1, Body: "text",
	}, moderator)
	assert.NoError(t, err)
}

/*
TestUpdateChapter_BodyChangeRecomputesWordCount verifies editing the body
refreshes the derived count while other edits leave it untouched.
*/
func TestUpdateChapter_BodyChangeRecomputesWordCount(t *testing.T) {
	h := newChapterHarness(t)

	c := &chapter.Chapter{NovelID: "novel-1", Seq: 1, Body: "one two three"}
	require.NoError(t, h.service.CreateChapter(context.Background(), c, owner()))
	require.Equal(t, 3, c.WordCount)

	newTitle := "Retitled"
	updated, err := h.service.UpdateChapter(context.Background(), c.ID, chapter.UpdateChapterInput{Title: &newTitle}, owner())
	require.NoError(t, err)
	assert.Equal(t, 3, updated.WordCount)

	newBody := "a much longer body with several more words in it"
	updated, err = h.service.UpdateChapter(context.Background(), c.ID, chapter.UpdateChapterInput{Body: &newBody}, owner())
	require.NoError(t, err)
	assert.Equal(t, 10, updated.WordCount)
	assert.Equal(t, []string{"created:novel-1", "edited:novel-1", "edited:novel-1"}, h.coordinator.events)
}

/*
TestDeleteChapter_NotifiesCoordinator verifies deletion hides the row and
hands the novel to the lifecycle coordinator.
*/
func TestDeleteChapter_NotifiesCoordinator(t *testing.T) {
	h := newChapterHarness(t)

	c := &chapter.Chapter{NovelID: "novel-1", Seq: 1, Body: "text"}
	require.NoError(t, h.service.CreateChapter(context.Background(), c, owner()))

	require.NoError(t, h.service.DeleteChapter(context.Background(), c.ID, owner()))

	_, err := h.service.GetChapter(context.Background(), c.ID)
	require.Error(t, err)
	assert.Equal(t, []string{"created:novel-1", "deleted:novel-1"}, h.coordinator.events)
}
