// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/pkg/uuidv7"
)

// # Service

// Service orchestrates the identity and session flows.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	resets   ResetTokenRepository
	verifies VerificationTokenRepository
	tokens   TokenProvider
	logger   *slog.Logger
}

// NewService constructs the authentication service.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	resets ResetTokenRepository,
	verifies VerificationTokenRepository,
	tokens TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		resets:   resets,
		verifies: verifies,
		tokens:   tokens,
		logger:   logger,
	}
}

// # Registration

// RegisterInput holds the data required to enroll a new reader.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes and persists a new account.

Description: New accounts start as unverified members. A verification token is
issued as a side effect; failure to issue it never fails the registration.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created account
  - error: Validation, Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	err := validate.New().
		Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, MinUsernameLength).
		MaxLen(FieldUsername, input.Username, MaxUsernameLength).
		Email(FieldEmail, input.Email).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Err()
	if err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to hash password: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	user := &User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         sec.RoleMember,
		IsVerified:   false,
	}

	// Duplicate username/email surfaces as Conflict from the partial indexes.
	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	if token, err := sec.GenerateSecureToken(VerificationTokenLength); err == nil {
		if err := service.verifies.Store(context, sec.HashToken(token), user.ID, VerificationTokenTTL); err == nil {
			// TODO: hand the raw token to the mail pipeline once it exists.
			service.logger.Info("verification_token_issued", slog.String("user_id", user.ID))
		}
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// # Login

// LoginInput holds credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Username or email.
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is a freshly established session ready for transport.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login verifies credentials and establishes a new session.

Description: Accepts username or email as the login handle. Lookup and
password failures share one generic message so accounts cannot be enumerated.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Access and refresh tokens plus the account
  - error: Unauthorized or storage failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.users.FindByEmail(context, input.Login)
	if err != nil {
		user, err = service.users.FindByUsername(context, input.Login)
	}
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issueSession(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

// issueSession mints an access token and a tracked refresh-token session.
func (service *Service) issueSession(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate access token: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to generate refresh token: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}
	if err := service.sessions.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth: failed to create session: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout revokes the session behind the given refresh token.

Description: Idempotent. An unknown or already revoked token is treated as a
successful logout.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures only
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}

	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth: failed to revoke session: %w", err)
	}

	service.logger.Info("user_logged_out", slog.String("user_id", session.UserID))
	return nil
}

// # Session Rotation

/*
RefreshSession rotates a refresh token.

Description: The presented token's session is revoked before a replacement is
issued, so a replayed token always fails.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Rotated credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth: failed to rotate session: %w", err)
	}

	user, err := service.users.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer active")
	}

	return service.issueSession(context, user, userAgent, ipAddress)
}

// # Password Recovery

/*
RequestPasswordReset starts the forgot-password flow.

Description: Returns an empty token for unknown emails instead of an error so
the endpoint cannot be used to enumerate accounts.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Raw reset token, empty when the email is unknown
  - error: Generation or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	user, err := service.users.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth: failed to generate reset token: %w", err)
	}

	if err := service.resets.Store(context, sec.HashToken(token), user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth: failed to store reset token: %w", err)
	}

	service.logger.Info("password_reset_requested", slog.String("user_id", user.ID))
	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Consumes the one-shot token, replaces the password hash and
revokes every active session for the account.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: NotFound for a bad token, validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	if err := validate.New().MinLen(FieldPassword, newPassword, MinPasswordLength).Err(); err != nil {
		return err
	}

	userID, err := service.resets.Consume(context, sec.HashToken(token))
	if err != nil {
		return err
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth: failed to hash password: %w", err)
	}
	if err := service.users.UpdatePassword(context, userID, hash); err != nil {
		return err
	}

	if err := service.sessions.RevokeAllForUser(context, userID); err != nil {
		service.logger.Warn("password_reset_session_revocation_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("password_reset_completed", slog.String("user_id", userID))
	return nil
}

/*
ChangePassword updates the password of an authenticated user.

Description: Requires the current password. All sessions are revoked
afterwards, forcing a fresh login on every device.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized, validation or update failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	if err := validate.New().MinLen(FieldPassword, newPassword, MinPasswordLength).Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth: failed to hash password: %w", err)
	}
	if err := service.users.UpdatePassword(context, userID, hash); err != nil {
		return err
	}

	if err := service.sessions.RevokeAllForUser(context, userID); err != nil {
		service.logger.Warn("password_change_session_revocation_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("password_changed", slog.String("user_id", userID))
	return nil
}

// # Account Upgrades

/*
VerifyEmail confirms an account's email address.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: NotFound for a bad token, or update failures
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	userID, err := service.verifies.Consume(context, sec.HashToken(token))
	if err != nil {
		return err
	}

	if err := service.users.MarkVerified(context, userID); err != nil {
		return err
	}

	service.logger.Info("email_verified", slog.String("user_id", userID))
	return nil
}

/*
BecomeAuthor upgrades a verified member to the author role.

Description: Publishing requires the author role. The upgrade is self-service
but gated on a verified email. Moderators and admins keep their role.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Account with the updated role
  - error: Forbidden for unverified accounts, or update failures
*/
func (service *Service) BecomeAuthor(context context.Context, userID string) (*User, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if user.Role.AtLeast(sec.RoleAuthor) {
		return user, nil
	}
	if !user.IsVerified {
		return nil, apperr.Forbidden("Verify your email before publishing")
	}

	if err := service.users.UpdateRole(context, userID, string(sec.RoleAuthor)); err != nil {
		return nil, err
	}
	user.Role = sec.RoleAuthor

	service.logger.Info("user_became_author", slog.String("user_id", userID))
	return user, nil
}
