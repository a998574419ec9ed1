// Copyright (c) 2026 Noveris. All rights reserved.

package library

import (
	"context"
	"log/slog"

	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/pkg/uuidv7"
)

// # Service

// Service orchestrates the reader's shelf.
type Service struct {
	store  Repository
	novels NovelFinder
	logger *slog.Logger
}

// NewService constructs the library service.
func NewService(store Repository, novels NovelFinder, logger *slog.Logger) *Service {
	return &Service{store: store, novels: novels, logger: logger}
}

// # Favorites

/*
AddFavorite files a novel on the caller's shelf.

Description: The novel is resolved first so favoriting a deleted or unknown
novel answers NotFound instead of silently shelving a dangling reference.

Parameters:
  - context: context.Context
  - userID: string
  - novelID: string
  - folderID: *string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) AddFavorite(context context.Context, userID, novelID string, folderID *string) error {
	if _, err := service.novels.FindByID(context, novelID); err != nil {
		return err
	}

	if err := service.store.AddFavorite(context, userID, novelID, folderID); err != nil {
		return err
	}

	service.logger.Debug("favorite_added",
		slog.String("user_id", userID),
		slog.String("novel_id", novelID),
	)
	return nil
}

// RemoveFavorite takes a novel off the caller's shelf. Idempotent.
func (service *Service) RemoveFavorite(context context.Context, userID, novelID string) error {
	return service.store.RemoveFavorite(context, userID, novelID)
}

// ListFavorites pages through the caller's shelf.
func (service *Service) ListFavorites(context context.Context, userID string, folderID *string, limit, offset int) ([]*FavoriteNovel, int, error) {
	return service.store.ListFavorites(context, userID, folderID, limit, offset)
}

// # Folders

// CreateFolder creates a named folder on the caller's shelf.
func (service *Service) CreateFolder(context context.Context, userID, name string) (*Folder, error) {
	err := validate.New().
		Required(FieldName, name).
		MaxLen(FieldName, name, 64).
		Err()
	if err != nil {
		return nil, err
	}

	folder := &Folder{
		ID:     uuidv7.New(),
		UserID: userID,
		Name:   name,
	}
	if err := service.store.CreateFolder(context, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// ListFolders lists the caller's folders.
func (service *Service) ListFolders(context context.Context, userID string) ([]*Folder, error) {
	return service.store.ListFolders(context, userID)
}

// DeleteFolder removes one of the caller's folders, unfiling its favorites.
func (service *Service) DeleteFolder(context context.Context, userID, folderID string) error {
	return service.store.DeleteFolder(context, userID, folderID)
}

// # Reading History

// Touch records the last chapter a reader opened in a novel. Called from
// the chapter reading path, off the request's critical path.
func (service *Service) Touch(context context.Context, userID, novelID, chapterID string) error {
	return service.store.TouchHistory(context, userID, novelID, chapterID)
}

// ListHistory pages through the caller's reading history.
func (service *Service) ListHistory(context context.Context, userID string, limit, offset int) ([]*HistoryEntry, int, error) {
	return service.store.ListHistory(context, userID, limit, offset)
}
