// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package account handles profile management, author statistics and device
session transparency.

It builds on the auth package for the User entity and on the catalogue for
the cascade that accompanies account deletion.
*/
package account

import (
	"context"
	"time"

	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/users/auth"
)

// # Domain Entities

// AuthorStats is the on-demand roll-up of an author's published catalogue.
// It is computed from the novels' derived columns at read time and never
// stored, so it cannot drift from the per-novel statistics.
type AuthorStats struct {
	AuthorID      string `json:"author_id"`
	Works         int    `json:"works"`
	TotalChapters int    `json:"total_chapters"`
	TotalWords    int64  `json:"total_words"`
	TotalReaders  int64  `json:"total_readers"`
}

// SessionInfo is the transport-safe view of an active session. Token hashes
// never leave the storage layer.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// # Dependency Contracts

// Users is the slice of the account store this package needs. Implemented by
// the auth package's user repository.
type Users interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	FindByUsername(context context.Context, username string) (*auth.User, error)
	Update(context context.Context, user *auth.User) error
	SoftDelete(context context.Context, id string) error
}

// StatsRepository computes author roll-ups and lists owned works.
type StatsRepository interface {
	// AuthorStats aggregates the derived columns of the author's live novels.
	AuthorStats(context context.Context, authorID string) (AuthorStats, error)

	// NovelIDsByAuthor lists the author's live novel IDs.
	NovelIDsByAuthor(context context.Context, authorID string) ([]string, error)
}

// SessionRepository exposes visibility and revocation over device sessions.
type SessionRepository interface {
	// FindActiveByUserID lists valid, unexpired sessions for a user.
	FindActiveByUserID(context context.Context, userID string) ([]SessionInfo, error)

	// Revoke revokes one session, scoped to its owner.
	Revoke(context context.Context, userID, sessionID string) error

	// RevokeOthers revokes every session except the given one.
	RevokeOthers(context context.Context, userID, keepSessionID string) error

	// RevokeAllForUser revokes every session belonging to a user.
	RevokeAllForUser(context context.Context, userID string) error
}

// NovelRemover tears down a single novel with its full chapter and
// statistics cascade. Implemented by the catalogue service.
type NovelRemover interface {
	DeleteNovel(context context.Context, novelID string, actor *sec.AuthClaims) error
}
