// Copyright (c) 2026 Noveris. All rights reserved.

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/database/schema"
)

// # Stats Repository

// statsRepository implements [StatsRepository] using pgx.
type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository constructs a PostgreSQL backed author-stats store.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

/*
AuthorStats aggregates the derived columns of an author's live novels.

Description: A single aggregate over core.novel. An author with no live
novels yields an all-zero roll-up rather than an error.

Parameters:
  - context: context.Context
  - authorID: string

Returns:
  - AuthorStats: Roll-up of works, chapters, words and readers
  - error: Execution errors
*/
func (repository *statsRepository) AuthorStats(context context.Context, authorID string) (AuthorStats, error) {
	t := schema.CoreNovel
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(%s), 0), COALESCE(SUM(%s), 0), COALESCE(SUM(%s), 0)
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		t.TotalChapters, t.WordCount, t.Readers,
		t.Table, t.AuthorID, t.DeletedAt,
	)

	stats := AuthorStats{AuthorID: authorID}
	err := repository.pool.QueryRow(context, query, authorID).Scan(
		&stats.Works, &stats.TotalChapters, &stats.TotalWords, &stats.TotalReaders,
	)
	if err != nil {
		return AuthorStats{}, fmt.Errorf("postgres: failed to aggregate author stats: %w", err)
	}
	return stats, nil
}

// NovelIDsByAuthor lists the author's live novel IDs, oldest first.
func (repository *statsRepository) NovelIDsByAuthor(context context.Context, authorID string) ([]string, error) {
	t := schema.CoreNovel
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL ORDER BY %s ASC",
		t.ID, t.Table, t.AuthorID, t.DeletedAt, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list author novels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan novel id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate author novels: %w", err)
	}
	return ids, nil
}

// # Session Repository

// sessionRepository implements [SessionRepository] using pgx. Every mutation
// is scoped to the owning user so one account can never touch another's
// sessions.
type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session-visibility store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

// FindActiveByUserID lists valid, unexpired sessions, newest first.
func (repository *sessionRepository) FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error) {
	t := schema.UsersSession
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
		ORDER BY %s DESC`,
		t.ID, t.UserAgent, t.IPAddress, t.CreatedAt, t.ExpiresAt,
		t.Table, t.UserID, t.IsRevoked, t.ExpiresAt, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionInfo
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.UserAgent, &info.IPAddress, &info.CreatedAt, &info.ExpiresAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// Revoke revokes one session, scoped to its owner.
func (repository *sessionRepository) Revoke(context context.Context, userID, sessionID string) error {
	t := schema.UsersSession
	query := fmt.Sprintf(
		"UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2",
		t.Table, t.IsRevoked, t.ID, t.UserID,
	)

	_, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
	}
	return nil
}

// RevokeOthers revokes every session except the given one.
func (repository *sessionRepository) RevokeOthers(context context.Context, userID, keepSessionID string) error {
	t := schema.UsersSession
	query := fmt.Sprintf(
		"UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s <> $2 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.ID, t.IsRevoked,
	)

	_, err := repository.pool.Exec(context, query, userID, keepSessionID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke other sessions: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every session belonging to a user.
func (repository *sessionRepository) RevokeAllForUser(context context.Context, userID string) error {
	t := schema.UsersSession
	query := fmt.Sprintf(
		"UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE",
		t.Table, t.IsRevoked, t.UserID, t.IsRevoked,
	)

	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke sessions: %w", err)
	}
	return nil
}
