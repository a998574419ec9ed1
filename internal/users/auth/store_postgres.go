// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/database/schema"
	"github.com/noveris/noveris/internal/platform/dberr"
)

// # User Repository

const (
	usernameConflictMessage = "This username is already taken"
	emailConflictMessage    = "This email is already registered"
)

// userRepository implements [UserRepository] using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a PostgreSQL backed account store.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// accountColumns is the canonical select list for account reads.
func accountColumns() string {
	t := schema.UsersAccount
	return strings.Join([]string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.DisplayName, t.Bio,
		t.Role, t.IsVerified, t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

// scanUser hydrates a [User] using the canonical column order.
func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.DisplayName, &user.Bio, &user.Role, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

/*
Create persists a new account row.

Description: Uniqueness of username and email among live accounts is enforced
by partial indexes; violations surface as [apperr.Conflict].

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Conflict on duplicate username/email, or execution errors
*/
func (repository *userRepository) Create(context context.Context, user *User) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.Table, t.ID, t.Username, t.Email, t.PasswordHash, t.DisplayName,
		t.Bio, t.Role, t.IsVerified, t.CreatedAt, t.UpdatedAt,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.DisplayName, user.Bio, user.Role, user.IsVerified,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), t.Email) {
				return apperr.Conflict(emailConflictMessage)
			}
			return apperr.Conflict(usernameConflictMessage)
		}
		return fmt.Errorf("postgres: failed to create account: %w", err)
	}
	return nil
}

// findByColumn is the shared lookup for the three account finders.
func (repository *userRepository) findByColumn(context context.Context, column, value string) (*User, error) {
	t := schema.UsersAccount
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL",
		accountColumns(), t.Table, column, t.DeletedAt,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: failed to find account by %s: %w", column, err)
	}
	return user, nil
}

// FindByID retrieves a live account by primary key.
func (repository *userRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findByColumn(context, schema.UsersAccount.ID, id)
}

// FindByEmail retrieves a live account by email.
func (repository *userRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findByColumn(context, schema.UsersAccount.Email, email)
}

// FindByUsername retrieves a live account by username.
func (repository *userRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findByColumn(context, schema.UsersAccount.Username, username)
}

/*
Update persists mutable profile fields.

Description: Writes display name and bio, refreshing updatedat. Credentials
and role travel through their dedicated methods.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Execution errors
*/
func (repository *userRepository) Update(context context.Context, user *User) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1 AND %s IS NULL`,
		t.Table, t.DisplayName, t.Bio, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query, user.ID, user.DisplayName, user.Bio, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to update account: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (repository *userRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.PasswordHash, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to update password: %w", err)
	}
	return nil
}

// UpdateRole changes the account's role.
func (repository *userRepository) UpdateRole(context context.Context, userID, role string) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.Role, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, userID, role, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to update role: %w", err)
	}
	return nil
}

// MarkVerified flips the account to verified.
func (repository *userRepository) MarkVerified(context context.Context, userID string) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(
		"UPDATE %s SET %s = TRUE, %s = $2 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.IsVerified, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to mark account verified: %w", err)
	}
	return nil
}

// SoftDelete marks the account as deleted.
func (repository *userRepository) SoftDelete(context context.Context, id string) error {
	t := schema.UsersAccount
	query := fmt.Sprintf(
		"UPDATE %s SET %s = $2 WHERE %s = $1 AND %s IS NULL",
		t.Table, t.DeletedAt, t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres: failed to soft delete account: %w", err)
	}
	return nil
}

// # Session Repository

// sessionRepository implements [SessionRepository] using pgx.
type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

// Create persists a new refresh-token session.
func (repository *sessionRepository) Create(context context.Context, session *Session) error {
	t := schema.UsersSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.Table, strings.Join(t.Columns(), ", "),
	)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.IsRevoked, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to create session: %w", err)
	}
	return nil
}

/*
FindByTokenHash resolves an active session by refresh-token hash.

Description: Revoked and expired sessions are excluded at the query level, so
a hit always represents a usable session.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated session
  - error: apperr.NotFound when absent, revoked or expired
*/
func (repository *sessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	t := schema.UsersSession
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()`,
		strings.Join(t.Columns(), ", "), t.Table, t.TokenHash, t.IsRevoked, t.ExpiresAt,
	)

	var session Session
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.UserAgent,
		&session.IPAddress, &session.ExpiresAt, &session.IsRevoked, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("session")
		}
		return nil, fmt.Errorf("postgres: failed to find session: %w", err)
	}
	return &session, nil
}

// Revoke marks a single session as revoked.
func (repository *sessionRepository) Revoke(context context.Context, sessionID string) error {
	t := schema.UsersSession
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE WHERE %s = $1", t.Table, t.IsRevoked, t.ID)

	_, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
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
