// Copyright (c) 2026 Noveris. All rights reserved.

package novel_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/pkg/pointer"
)

// # Test Fakes

// fakeNovelRepo is an in-memory novel store.
type fakeNovelRepo struct {
	rows map[string]*novel.Novel
}

func newFakeNovelRepo() *fakeNovelRepo {
	return &fakeNovelRepo{rows: make(map[string]*novel.Novel)}
}

func (f *fakeNovelRepo) List(_ context.Context, _ novel.Filter, _, _ int) ([]*novel.Novel, int, error) {
	var out []*novel.Novel
	for _, n := range f.rows {
		if n.DeletedAt == nil {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (f *fakeNovelRepo) FindByID(_ context.Context, id string) (*novel.Novel, error) {
	n, ok := f.rows[id]
	if !ok || n.DeletedAt != nil {
		return nil, apperr.NotFound("novel")
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNovelRepo) FindBySlug(_ context.Context, s string) (*novel.Novel, error) {
	for _, n := range f.rows {
		if n.Slug == s && n.DeletedAt == nil {
			copied := *n
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("novel")
}

func (f *fakeNovelRepo) Create(_ context.Context, n *novel.Novel) error {
	for _, existing := range f.rows {
		if existing.Slug == n.Slug && existing.DeletedAt == nil {
			return apperr.Conflict("A novel with this slug already exists")
		}
	}
	copied := *n
	f.rows[n.ID] = &copied
	return nil
}

func (f *fakeNovelRepo) Update(_ context.Context, n *novel.Novel) error {
	copied := *n
	f.rows[n.ID] = &copied
	return nil
}

func (f *fakeNovelRepo) SoftDelete(_ context.Context, id string) error {
	if n, ok := f.rows[id]; ok {
		now := time.Now()
		n.DeletedAt = &now
	}
	return nil
}

func (f *fakeNovelRepo) SetLatestChapter(_ context.Context, novelID string, chapterID *string) error {
	if n, ok := f.rows[novelID]; ok && n.DeletedAt == nil {
		n.LatestChapterID = chapterID
	}
	return nil
}

func (f *fakeNovelRepo) TouchLastActive(_ context.Context, novelID string) error {
	if n, ok := f.rows[novelID]; ok {
		n.LastActiveAt = time.Now()
	}
	return nil
}

// fakePurger counts chapter cascade calls.
type fakePurger struct {
	purged  map[string]int64
	perCall int64
}

func (f *fakePurger) SoftDeleteByNovel(_ context.Context, novelID string) (int64, error) {
	if f.purged == nil {
		f.purged = make(map[string]int64)
	}
	f.purged[novelID] = f.perCall
	return f.perCall, nil
}

// fakeLifecycle records coordinator notifications.
type fakeLifecycle struct {
	events []string
}

func (f *fakeLifecycle) OnChaptersBulkDeleted(_ context.Context, novelID string) {
	f.events = append(f.events, "bulk_deleted:"+novelID)
}

func (f *fakeLifecycle) OnNovelStatusChanged(_ context.Context, novelID, oldStatus, newStatus string) {
	f.events = append(f.events, "status:"+novelID+":"+oldStatus+">"+newStatus)
}

// # Harness

type novelHarness struct {
	repo        *fakeNovelRepo
	purger      *fakePurger
	coordinator *fakeLifecycle
	service     *novel.Service
}

func newNovelHarness(t *testing.T) *novelHarness {
	t.Helper()

	repo := newFakeNovelRepo()
	purger := &fakePurger{perCall: 3}
	coordinator := &fakeLifecycle{}
	logger := slog.New(slog.DiscardHandler)

	return &novelHarness{
		repo:        repo,
		purger:      purger,
		coordinator: coordinator,
		service:     novel.NewService(repo, purger, coordinator, logger),
	}
}

func author() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "author-1", Role: string(sec.RoleAuthor)}
}

// # Tests

/*
TestCreateNovel_Defaults verifies a bare creation fills in ID, ongoing
status and a slug derived from the title.
*/
func TestCreateNovel_Defaults(t *testing.T) {
	h := newNovelHarness(t)

	n := &novel.Novel{AuthorID: "author-1", Title: "Sword of the Falling Star"}
	require.NoError(t, h.service.CreateNovel(context.Background(), n))

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, novel.StatusOngoing, n.Status)
	assert.Equal(t, "sword-of-the-falling-star", n.Slug)
}

/*
TestCreateNovel_SlugConflict verifies two live novels cannot share a slug.
*/
func TestCreateNovel_SlugConflict(t *testing.T) {
	h := newNovelHarness(t)

	first := &novel.Novel{AuthorID: "author-1", Title: "Twin Rivers"}
	require.NoError(t, h.service.CreateNovel(context.Background(), first))

	second := &novel.Novel{AuthorID: "author-2", Title: "Twin Rivers"}
	err := h.service.CreateNovel(context.Background(), second)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestUpdateNovel_StatusTransitionNotifiesCoordinator verifies only genuine
status changes reach the lifecycle coordinator.
*/
func TestUpdateNovel_StatusTransitionNotifiesCoordinator(t *testing.T) {
	h := newNovelHarness(t)

	n := &novel.Novel{AuthorID: "author-1", Title: "The Quiet Archive"}
	require.NoError(t, h.service.CreateNovel(context.Background(), n))

	// Same status: no event.
	_, err := h.service.UpdateNovel(context.Background(), n.ID, novel.UpdateNovelInput{Status: pointer.To(novel.StatusOngoing)}, author())
	require.NoError(t, err)
	assert.Empty(t, h.coordinator.events)

	// Real transition: one event carrying both endpoints.
	_, err = h.service.UpdateNovel(context.Background(), n.ID, novel.UpdateNovelInput{Status: pointer.To(novel.StatusCompleted)}, author())
	require.NoError(t, err)
	assert.Equal(t, []string{"status:" + n.ID + ":ongoing>completed"}, h.coordinator.events)
}

/*
TestUpdateNovel_OwnershipEnforced verifies a foreign member is rejected and
a moderator is allowed.
*/
func TestUpdateNovel_OwnershipEnforced(t *testing.T) {
	h := newNovelHarness(t)

	n := &novel.Novel{AuthorID: "author-1", Title: "Borrowed Time"}
	require.NoError(t, h.service.CreateNovel(context.Background(), n))

	title := pointer.To("Stolen Time")
	stranger := &sec.AuthClaims{UserID: "reader-9", Role: string(sec.RoleMember)}
	_, err := h.service.UpdateNovel(context.Background(), n.ID, novel.UpdateNovelInput{Title: title}, stranger)
	require.Error(t, err)

	moderator := &sec.AuthClaims{UserID: "mod-1", Role: string(sec.RoleModerator)}
	updated, err := h.service.UpdateNovel(context.Background(), n.ID, novel.UpdateNovelInput{Title: title}, moderator)
	require.NoError(t, err)
	assert.Equal(t, "Stolen Time", updated.Title)
}

/*
TestDeleteNovel_CascadesAndNotifies verifies deletion hides the novel,
bulk-deletes its chapters and fires the lifecycle event afterwards.
*/
func TestDeleteNovel_CascadesAndNotifies(t *testing.T) {
	h := newNovelHarness(t)

	n := &novel.Novel{AuthorID: "author-1", Title: "Last Ember"}
	require.NoError(t, h.service.CreateNovel(context.Background(), n))

	require.NoError(t, h.service.DeleteNovel(context.Background(), n.ID, author()))

	_, err := h.service.GetNovel(context.Background(), n.ID)
	require.Error(t, err)
	assert.Equal(t, int64(3), h.purger.purged[n.ID])
	assert.Equal(t, []string{"bulk_deleted:" + n.ID}, h.coordinator.events)
}
