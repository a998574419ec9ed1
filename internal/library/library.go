// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package library implements each reader's personal shelf: favorites grouped
into folders and a per-novel reading history.

# Architecture

  - Favorites: one row per (reader, novel), optionally filed into a folder.
  - Folders: flat, reader-owned groupings. Deleting a folder unfiles its
    favorites instead of removing them.
  - History: one row per (reader, novel) holding the last chapter read,
    touched in the background by the chapter reading path.
*/
package library

import (
	"context"
	"time"

	"github.com/noveris/noveris/internal/core/novel"
)

// # Domain Entities

// Folder is a reader-owned grouping of favorites.
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteNovel is a favorites-list row: the novel joined with its shelf
// metadata.
type FavoriteNovel struct {
	Novel       *novel.Novel `json:"novel"`
	FolderID    *string      `json:"folder_id,omitempty"`
	FavoritedAt time.Time    `json:"favorited_at"`
}

// HistoryEntry is the last chapter a reader touched in a given novel.
type HistoryEntry struct {
	NovelID      string    `json:"novel_id"`
	NovelTitle   string    `json:"novel_title"`
	ChapterID    string    `json:"chapter_id"`
	ChapterTitle string    `json:"chapter_title"`
	ChapterSeq   int       `json:"chapter_seq"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldFolderID = "folder_id"
)

// # Repository Contracts

// Repository defines persistence for the reader's shelf.
type Repository interface {
	// AddFavorite files a novel on the shelf. Idempotent; re-adding moves
	// the favorite to the given folder.
	AddFavorite(context context.Context, userID, novelID string, folderID *string) error

	// RemoveFavorite takes a novel off the shelf. Missing rows are a no-op.
	RemoveFavorite(context context.Context, userID, novelID string) error

	// ListFavorites pages through the shelf, optionally scoped to a folder,
	// newest first.
	ListFavorites(context context.Context, userID string, folderID *string, limit, offset int) ([]*FavoriteNovel, int, error)

	// CreateFolder persists a new folder.
	CreateFolder(context context.Context, folder *Folder) error

	// ListFolders lists the reader's folders by creation order.
	ListFolders(context context.Context, userID string) ([]*Folder, error)

	// DeleteFolder removes a folder, unfiling its favorites.
	DeleteFolder(context context.Context, userID, folderID string) error

	// TouchHistory upserts the last-read chapter for a novel.
	TouchHistory(context context.Context, userID, novelID, chapterID string) error

	// ListHistory pages through reading history, most recent first.
	ListHistory(context context.Context, userID string, limit, offset int) ([]*HistoryEntry, int, error)
}

// NovelFinder resolves novels when favoriting. Implemented by the catalogue
// repository.
type NovelFinder interface {
	FindByID(context context.Context, id string) (*novel.Novel, error)
}
