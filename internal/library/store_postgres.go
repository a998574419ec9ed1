// Copyright (c) 2026 Noveris. All rights reserved.

package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/database/schema"
)

// # PostgreSQL Repository

// repository implements [Repository] using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed shelf store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// # Favorites

/*
AddFavorite files a novel on the shelf.

Description: Upserts on (userid, novelid) so re-adding a favorite simply
refiles it into the given folder. Folder ownership is checked first so a
reader cannot file into someone else's folder.

Parameters:
  - context: context.Context
  - userID: string
  - novelID: string
  - folderID: *string (nil leaves the favorite unfiled)

Returns:
  - error: apperr.NotFound for a foreign folder, or execution errors
*/
func (repository *repository) AddFavorite(context context.Context, userID, novelID string, folderID *string) error {
	if folderID != nil {
		fo := schema.LibraryFolder
		ownershipQuery := fmt.Sprintf(
			"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)",
			fo.Table, fo.ID, fo.UserID,
		)
		var owned bool
		if err := repository.pool.QueryRow(context, ownershipQuery, *folderID, userID).Scan(&owned); err != nil {
			return fmt.Errorf("postgres: failed to check folder ownership: %w", err)
		}
		if !owned {
			return apperr.NotFound("folder")
		}
	}

	t := schema.LibraryFavorite
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s`,
		t.Table, t.UserID, t.NovelID, t.FolderID, t.CreatedAt,
		t.UserID, t.NovelID, t.FolderID, t.FolderID,
	)

	_, err := repository.pool.Exec(context, query, userID, novelID, folderID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite takes a novel off the shelf.
func (repository *repository) RemoveFavorite(context context.Context, userID, novelID string) error {
	t := schema.LibraryFavorite
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1 AND %s = $2",
		t.Table, t.UserID, t.NovelID,
	)

	_, err := repository.pool.Exec(context, query, userID, novelID)
	if err != nil {
		return fmt.Errorf("postgres: failed to remove favorite: %w", err)
	}
	return nil
}

/*
ListFavorites pages through the shelf, newest favorite first.

Description: Joins each favorite with its live novel row. Favorites pointing
at novels deleted since being shelved are filtered out. The window-function
total keeps pagination to a single round trip.

Parameters:
  - context: context.Context
  - userID: string
  - folderID: *string (nil ignores folders)
  - limit: int
  - offset: int

Returns:
  - []*FavoriteNovel: Page of shelf rows
  - int: Total matching favorites
*/
func (repository *repository) ListFavorites(context context.Context, userID string, folderID *string, limit, offset int) ([]*FavoriteNovel, int, error) {
	f := schema.LibraryFavorite
	n := schema.CoreNovel

	novelCols := make([]string, 0, len(n.Columns()))
	for _, c := range n.Columns() {
		novelCols = append(novelCols, "n."+c)
	}

	var queryBuilder strings.Builder
	fmt.Fprintf(&queryBuilder, `
		SELECT %s, f.%s, f.%s, COUNT(*) OVER()
		FROM %s f
		JOIN %s n ON n.%s = f.%s
		WHERE f.%s = $1 AND n.%s IS NULL`,
		strings.Join(novelCols, ", "), f.FolderID, f.CreatedAt,
		f.Table, n.Table, n.ID, f.NovelID,
		f.UserID, n.DeletedAt,
	)

	args := []any{userID}
	if folderID != nil {
		args = append(args, *folderID)
		fmt.Fprintf(&queryBuilder, " AND f.%s = $%d", f.FolderID, len(args))
	}

	args = append(args, limit, offset)
	fmt.Fprintf(&queryBuilder, " ORDER BY f.%s DESC LIMIT $%d OFFSET $%d", f.CreatedAt, len(args)-1, len(args))

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []*FavoriteNovel
	var total int
	for rows.Next() {
		var nv novel.Novel
		var fav FavoriteNovel
		err := rows.Scan(
			&nv.ID, &nv.AuthorID, &nv.Title, &nv.Slug, &nv.Description, &nv.Status,
			&nv.WordCount, &nv.TotalChapters, &nv.Readers, &nv.LatestChapterID,
			&nv.LastActiveAt, &nv.CreatedAt, &nv.UpdatedAt, &nv.DeletedAt,
			&fav.FolderID, &fav.FavoritedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan favorite: %w", err)
		}
		fav.Novel = &nv
		favorites = append(favorites, &fav)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate favorites: %w", err)
	}
	return favorites, total, nil
}

// # Folders

// CreateFolder persists a new folder.
func (repository *repository) CreateFolder(context context.Context, folder *Folder) error {
	t := schema.LibraryFolder
	query := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)",
		t.Table, t.ID, t.UserID, t.Name, t.CreatedAt,
	)

	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query, folder.ID, folder.UserID, folder.Name, folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to create folder: %w", err)
	}
	return nil
}

// ListFolders lists the reader's folders by creation order.
func (repository *repository) ListFolders(context context.Context, userID string) ([]*Folder, error) {
	t := schema.LibraryFolder
	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC",
		t.ID, t.UserID, t.Name, t.CreatedAt, t.Table, t.UserID, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []*Folder
	for rows.Next() {
		var folder Folder
		if err := rows.Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan folder: %w", err)
		}
		folders = append(folders, &folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate folders: %w", err)
	}
	return folders, nil
}

/*
DeleteFolder removes a folder, unfiling its favorites.

Description: Two statements in one transaction: favorites filed in the
folder drop back to the unfiled shelf, then the folder row is removed.

Parameters:
  - context: context.Context
  - userID: string
  - folderID: string

Returns:
  - error: apperr.NotFound for a foreign or missing folder
*/
func (repository *repository) DeleteFolder(context context.Context, userID, folderID string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin folder deletion: %w", err)
	}
	defer transaction.Rollback(context)

	fa := schema.LibraryFavorite
	unfileQuery := fmt.Sprintf(
		"UPDATE %s SET %s = NULL WHERE %s = $1 AND %s = $2",
		fa.Table, fa.FolderID, fa.UserID, fa.FolderID,
	)
	if _, err := transaction.Exec(context, unfileQuery, userID, folderID); err != nil {
		return fmt.Errorf("postgres: failed to unfile favorites: %w", err)
	}

	fo := schema.LibraryFolder
	deleteQuery := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = $1 AND %s = $2",
		fo.Table, fo.ID, fo.UserID,
	)
	tag, err := transaction.Exec(context, deleteQuery, folderID, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("folder")
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit folder deletion: %w", err)
	}
	return nil
}

// # Reading History

// TouchHistory upserts the last-read chapter for a novel.
func (repository *repository) TouchHistory(context context.Context, userID, novelID, chapterID string) error {
	t := schema.LibraryHistory
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s, %s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		t.Table, t.UserID, t.NovelID, t.ChapterID, t.UpdatedAt,
		t.UserID, t.NovelID, t.ChapterID, t.ChapterID, t.UpdatedAt, t.UpdatedAt,
	)

	_, err := repository.pool.Exec(context, query, userID, novelID, chapterID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to touch history: %w", err)
	}
	return nil
}

/*
ListHistory pages through reading history, most recently read first.

Description: Joins each entry with its novel and chapter titles. Entries
whose novel or chapter has since been deleted are filtered out.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int
  - offset: int

Returns:
  - []*HistoryEntry: Page of history rows
  - int: Total matching entries
*/
func (repository *repository) ListHistory(context context.Context, userID string, limit, offset int) ([]*HistoryEntry, int, error) {
	h := schema.LibraryHistory
	n := schema.CoreNovel
	c := schema.CoreChapter

	query := fmt.Sprintf(`
		SELECT h.%s, n.%s, h.%s, c.%s, c.%s, h.%s, COUNT(*) OVER()
		FROM %s h
		JOIN %s n ON n.%s = h.%s
		JOIN %s c ON c.%s = h.%s
		WHERE h.%s = $1 AND n.%s IS NULL AND c.%s IS NULL
		ORDER BY h.%s DESC
		LIMIT $2 OFFSET $3`,
		h.NovelID, n.Title, h.ChapterID, c.Title, c.Seq, h.UpdatedAt,
		h.Table,
		n.Table, n.ID, h.NovelID,
		c.Table, c.ID, h.ChapterID,
		h.UserID, n.DeletedAt, c.DeletedAt,
		h.UpdatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	var total int
	for rows.Next() {
		var entry HistoryEntry
		err := rows.Scan(
			&entry.NovelID, &entry.NovelTitle, &entry.ChapterID,
			&entry.ChapterTitle, &entry.ChapterSeq, &entry.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan history entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate history: %w", err)
	}
	return entries, total, nil
}
