// Copyright (c) 2026 Noveris. All rights reserved.

package library_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/library"
	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/ctxutil"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/sec"
)

// # Test Fakes

// fakeShelf journals favorite writes.
type fakeShelf struct {
	library.Repository

	addCalls []addCall
}

type addCall struct {
	userID   string
	novelID  string
	folderID *string
}

func (f *fakeShelf) AddFavorite(_ context.Context, userID, novelID string, folderID *string) error {
	f.addCalls = append(f.addCalls, addCall{userID: userID, novelID: novelID, folderID: folderID})
	return nil
}

// fakeNovels resolves every ID to a live novel.
type fakeNovels struct{}

func (fakeNovels) FindByID(_ context.Context, id string) (*novel.Novel, error) {
	if id == "" {
		return nil, apperr.NotFound("novel")
	}
	return &novel.Novel{ID: id, Title: "Sky Lantern Chronicle", CreatedAt: time.Now()}, nil
}

// # Harness

func newFavoriteRequest(body string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPut, "/library/favorites/novel-1", strings.NewReader(body))

	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add("novelID", "novel-1")
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeContext)
	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "reader-1", Role: string(sec.RoleMember)})

	return httptest.NewRecorder(), req.WithContext(ctx)
}

// # Tests

/*
TestAddFavorite_EmptyBodyFilesUnfoldered verifies the body is optional: a
bare PUT shelves the favorite with no folder.
*/
func TestAddFavorite_EmptyBodyFilesUnfoldered(t *testing.T) {
	shelf := &fakeShelf{}
	handler := library.NewHandler(library.NewService(shelf, fakeNovels{}, slog.New(slog.DiscardHandler)))

	recorder, req := newFavoriteRequest("")
	handler.AddFavorite(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.Len(t, shelf.addCalls, 1)
	assert.Equal(t, "reader-1", shelf.addCalls[0].userID)
	assert.Equal(t, "novel-1", shelf.addCalls[0].novelID)
	assert.Nil(t, shelf.addCalls[0].folderID)
}

/*
TestAddFavorite_FolderFromBody verifies a folder choice in the body reaches
the store.
*/
func TestAddFavorite_FolderFromBody(t *testing.T) {
	shelf := &fakeShelf{}
	handler := library.NewHandler(library.NewService(shelf, fakeNovels{}, slog.New(slog.DiscardHandler)))

	recorder, req := newFavoriteRequest(`{"folder_id": "folder-1"}`)
	handler.AddFavorite(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.Len(t, shelf.addCalls, 1)
	require.NotNil(t, shelf.addCalls[0].folderID)
	assert.Equal(t, "folder-1", *shelf.addCalls[0].folderID)
}

/*
TestAddFavorite_MalformedBodyRejected verifies a present but unparseable body
is a client error rather than a silent unfoldered add.
*/
func TestAddFavorite_MalformedBodyRejected(t *testing.T) {
	shelf := &fakeShelf{}
	handler := library.NewHandler(library.NewService(shelf, fakeNovels{}, slog.New(slog.DiscardHandler)))

	recorder, req := newFavoriteRequest(`{"folder_id":`)
	handler.AddFavorite(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	assert.Empty(t, shelf.addCalls)
}
