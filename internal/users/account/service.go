// Copyright (c) 2026 Noveris. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/internal/users/auth"
	"github.com/noveris/noveris/pkg/pointer"
)

// # Service

// Service orchestrates profile reads, author statistics and the account
// deletion cascade.
type Service struct {
	users    Users
	stats    StatsRepository
	sessions SessionRepository
	novels   NovelRemover
	logger   *slog.Logger
}

// NewService constructs the account service.
func NewService(users Users, stats StatsRepository, sessions SessionRepository, novels NovelRemover, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		stats:    stats,
		sessions: sessions,
		novels:   novels,
		logger:   logger,
	}
}

// # Profiles

// GetProfile retrieves an account by ID.
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.users.FindByID(context, userID)
}

// GetProfileByUsername retrieves a public profile by its handle.
func (service *Service) GetProfileByUsername(context context.Context, username string) (*auth.User, error) {
	return service.users.FindByUsername(context, username)
}

// UpdateProfileInput is the mutable subset of profile fields. Nil means
// leave the field unchanged.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
}

/*
UpdateProfile applies a partial profile update.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: Updated account
  - error: NotFound, validation or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	user.DisplayName = pointer.DerefOr(input.DisplayName, user.DisplayName)
	user.Bio = pointer.DerefOr(input.Bio, user.Bio)

	err = validate.New().
		Required(auth.FieldDisplayName, user.DisplayName).
		MaxLen(auth.FieldDisplayName, user.DisplayName, 64).
		Err()
	if err != nil {
		return nil, err
	}

	if err := service.users.Update(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))
	return user, nil
}

// # Author Statistics

/*
GetAuthorStats computes the roll-up for a public profile.

Description: Resolves the handle first so a missing account answers 404
rather than an empty roll-up.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - AuthorStats: Aggregated works, chapters, words and readers
  - error: NotFound or execution failures
*/
func (service *Service) GetAuthorStats(context context.Context, username string) (AuthorStats, error) {
	user, err := service.users.FindByUsername(context, username)
	if err != nil {
		return AuthorStats{}, err
	}
	return service.stats.AuthorStats(context, user.ID)
}

// # Account Deletion

/*
DeleteAccount soft-deletes an account and everything it published.

Description: Each owned novel is torn down through the catalogue so its
chapters are removed and its statistics lifecycle fires. A novel that fails
to delete is logged and skipped; the account itself is still deleted.
Finishes by revoking every session.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Account being deleted)

Returns:
  - error: Deletion failures
*/
func (service *Service) DeleteAccount(context context.Context, actor *sec.AuthClaims) error {
	novelIDs, err := service.stats.NovelIDsByAuthor(context, actor.UserID)
	if err != nil {
		return fmt.Errorf("account: failed to list owned novels: %w", err)
	}

	for _, novelID := range novelIDs {
		if err := service.novels.DeleteNovel(context, novelID, actor); err != nil {
			service.logger.Warn("account_novel_teardown_failed",
				slog.String("user_id", actor.UserID),
				slog.String("novel_id", novelID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := service.users.SoftDelete(context, actor.UserID); err != nil {
		return err
	}

	if err := service.sessions.RevokeAllForUser(context, actor.UserID); err != nil {
		service.logger.Warn("account_session_revocation_failed",
			slog.String("user_id", actor.UserID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("user_account_deleted",
		slog.String("user_id", actor.UserID),
		slog.Int("novels_torn_down", len(novelIDs)),
	)
	return nil
}

// # Session Security

// ListSessions lists the caller's active device sessions.
func (service *Service) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {
	return service.sessions.FindActiveByUserID(context, userID)
}

// RevokeSession terminates one of the caller's sessions.
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if err := service.sessions.Revoke(context, userID, sessionID); err != nil {
		return err
	}
	service.logger.Info("user_session_revoked",
		slog.String("user_id", userID),
		slog.String("session_id", sessionID),
	)
	return nil
}

// RevokeOtherSessions terminates every session except the named one.
func (service *Service) RevokeOtherSessions(context context.Context, userID, keepSessionID string) error {
	if err := service.sessions.RevokeOthers(context, userID, keepSessionID); err != nil {
		return err
	}
	service.logger.Info("user_other_sessions_revoked", slog.String("user_id", userID))
	return nil
}
