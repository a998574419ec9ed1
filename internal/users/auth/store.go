// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # Repository Contracts

// UserRepository defines persistence for account records.
type UserRepository interface {
	// Create persists a new account.
	Create(context context.Context, user *User) error

	// FindByID retrieves a live account by primary key.
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail retrieves a live account by email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByUsername retrieves a live account by username.
	FindByUsername(context context.Context, username string) (*User, error)

	// Update persists mutable profile fields.
	Update(context context.Context, user *User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(context context.Context, userID, newHash string) error

	// UpdateRole changes the account's role.
	UpdateRole(context context.Context, userID, role string) error

	// MarkVerified flips the account to verified.
	MarkVerified(context context.Context, userID string) error

	// SoftDelete marks the account as deleted.
	SoftDelete(context context.Context, id string) error
}

// SessionRepository defines persistence for refresh-token sessions.
type SessionRepository interface {
	// Create persists a new session.
	Create(context context.Context, session *Session) error

	// FindByTokenHash resolves an active, unexpired session by token hash.
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// Revoke marks a single session as revoked.
	Revoke(context context.Context, sessionID string) error

	// RevokeAllForUser revokes every session belonging to a user.
	RevokeAllForUser(context context.Context, userID string) error
}

// ResetTokenRepository stores short-lived password reset tokens.
type ResetTokenRepository interface {
	// Store associates a hashed reset token with a user for the given TTL.
	Store(context context.Context, tokenHash, userID string, ttl time.Duration) error

	// Consume resolves and deletes a hashed reset token in one step.
	// Returns the owning user ID, or apperr.NotFound when absent or expired.
	Consume(context context.Context, tokenHash string) (string, error)
}

// VerificationTokenRepository stores short-lived email verification tokens.
type VerificationTokenRepository interface {
	// Store associates a hashed verification token with a user for the given TTL.
	Store(context context.Context, tokenHash, userID string, ttl time.Duration) error

	// Consume resolves and deletes a hashed verification token in one step.
	Consume(context context.Context, tokenHash string) (string, error)
}

// TokenProvider issues signed access tokens for authenticated users.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}
