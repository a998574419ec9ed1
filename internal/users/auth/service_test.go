// Copyright (c) 2026 Noveris. All rights reserved.

package auth_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/users/auth"
)

// # Test Fakes

// fakeUserRepo is an in-memory user store.
type fakeUserRepo struct {
	rows map[string]*auth.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[string]*auth.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *auth.User) error {
	for _, existing := range f.rows {
		if existing.Username == u.Username {
			return apperr.Conflict("This username is already taken")
		}
		if existing.Email == u.Email {
			return apperr.Conflict("An account with this email already exists")
		}
	}
	copied := *u
	f.rows[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, u := range f.rows {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (f *fakeUserRepo) Update(_ context.Context, u *auth.User) error {
	copied := *u
	f.rows[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if u, ok := f.rows[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id, role string) error {
	if u, ok := f.rows[id]; ok {
		u.Role = sec.UserRole(role)
	}
	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id string) error {
	if u, ok := f.rows[id]; ok {
		u.IsVerified = true
	}
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

// fakeSessionRepo tracks refresh-token sessions by hash.
type fakeSessionRepo struct {
	rows map[string]*auth.Session // keyed by session ID
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: make(map[string]*auth.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *auth.Session) error {
	copied := *s
	f.rows[s.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) FindByTokenHash(_ context.Context, hash string) (*auth.Session, error) {
	for _, s := range f.rows {
		if s.TokenHash == hash && !s.IsRevoked && s.ExpiresAt.After(time.Now()) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("session")
}

func (f *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	if s, ok := f.rows[sessionID]; ok {
		s.IsRevoked = true
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllForUser(_ context.Context, userID string) error {
	for _, s := range f.rows {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (f *fakeSessionRepo) activeCount(userID string) int {
	count := 0
	for _, s := range f.rows {
		if s.UserID == userID && !s.IsRevoked {
			count++
		}
	}
	return count
}

// fakeTokenRepo is an in-memory one-shot token store.
type fakeTokenRepo struct {
	rows map[string]string // token hash -> user ID
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]string)}
}

func (f *fakeTokenRepo) Store(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	f.rows[tokenHash] = userID
	return nil
}

func (f *fakeTokenRepo) Consume(_ context.Context, tokenHash string) (string, error) {
	userID, ok := f.rows[tokenHash]
	if !ok {
		return "", apperr.NotFound("token")
	}
	delete(f.rows, tokenHash)
	return userID, nil
}

// fakeTokenProvider mints predictable opaque access tokens.
type fakeTokenProvider struct {
	minted int
}

func (f *fakeTokenProvider) GenerateAccessToken(userID, _, _ string, _ time.Duration) (string, error) {
	f.minted++
	return fmt.Sprintf("access-%s-%d", userID, f.minted), nil
}

// # Harness

type authHarness struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	resets   *fakeTokenRepo
	verifies *fakeTokenRepo
	service  *auth.Service
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()

	h := &authHarness{
		users:    newFakeUserRepo(),
		sessions: newFakeSessionRepo(),
		resets:   newFakeTokenRepo(),
		verifies: newFakeTokenRepo(),
	}
	h.service = auth.NewService(
		h.users,
		h.sessions,
		h.resets,
		h.verifies,
		&fakeTokenProvider{},
		slog.New(slog.DiscardHandler),
	)
	return h
}

func (h *authHarness) register(t *testing.T) *auth.User {
	t.Helper()

	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username: "inkwell",
		Email:    "inkwell@noveris.app",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)
	return user
}

// # Tests

/*
TestRegister verifies a new account starts as an unverified member with the
password stored only as a hash.
*/
func TestRegister(t *testing.T) {
	h := newAuthHarness(t)

	user := h.register(t)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "inkwell", user.DisplayName)
	assert.NotEqual(t, "turning-pages-9", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("turning-pages-9", user.PasswordHash))
	assert.Len(t, h.verifies.rows, 1)
}

/*
TestRegister_DuplicateUsername verifies the storage conflict surfaces
unchanged.
*/
func TestRegister_DuplicateUsername(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t)

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Username: "inkwell",
		Email:    "other@noveris.app",
		Password: "turning-pages-9",
	})

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "CONFLICT", ae.Code)
}

/*
TestLogin verifies both login handles work and that a bad password and an
unknown account share one generic failure message.
*/
func TestLogin(t *testing.T) {
	h := newAuthHarness(t)
	h.register(t)

	byEmail, err := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell@noveris.app",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.AccessToken)
	assert.NotEmpty(t, byEmail.RefreshToken)

	byUsername, err := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)
	assert.NotEqual(t, byEmail.RefreshToken, byUsername.RefreshToken)

	_, badPassword := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "wrong-password-1",
	})
	_, unknownUser := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "nobody",
		Password: "turning-pages-9",
	})
	require.Error(t, badPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, badPassword.Error(), unknownUser.Error())
}

/*
TestRefreshSession_RotatesToken verifies rotation revokes the presented
token so it cannot be replayed.
*/
func TestRefreshSession_RotatesToken(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t)

	first, err := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)

	rotated, err := h.service.RefreshSession(context.Background(), first.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, 1, h.sessions.activeCount(user.ID))

	// Replaying the rotated-away token must fail.
	_, err = h.service.RefreshSession(context.Background(), first.RefreshToken, "", "")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

/*
TestLogout_Idempotent verifies revoking an unknown token is still a
successful logout.
*/
func TestLogout_Idempotent(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t)

	session, err := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)

	require.NoError(t, h.service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, h.sessions.activeCount(user.ID))

	require.NoError(t, h.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, h.service.Logout(context.Background(), "never-issued"))
}

/*
TestPasswordReset_Flow verifies the one-shot reset token replaces the
password and revokes every active session.
*/
func TestPasswordReset_Flow(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t)

	_, err := h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "turning-pages-9",
	})
	require.NoError(t, err)

	token, err := h.service.RequestPasswordReset(context.Background(), "inkwell@noveris.app")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, h.service.ResetPassword(context.Background(), token, "fresh-chapters-22"))
	assert.Equal(t, 0, h.sessions.activeCount(user.ID))

	// Token is consumed; a second use fails.
	err = h.service.ResetPassword(context.Background(), token, "another-pass-33")
	require.Error(t, err)

	_, err = h.service.Login(context.Background(), auth.LoginInput{
		Login:    "inkwell",
		Password: "fresh-chapters-22",
	})
	require.NoError(t, err)
}

/*
TestPasswordReset_UnknownEmail verifies the forgot flow stays silent for
unknown accounts.
*/
func TestPasswordReset_UnknownEmail(t *testing.T) {
	h := newAuthHarness(t)

	token, err := h.service.RequestPasswordReset(context.Background(), "ghost@noveris.app")
	require.NoError(t, err)
	assert.Empty(t, token)
}

/*
TestBecomeAuthor verifies the self-service upgrade is gated on a verified
email.
*/
func TestBecomeAuthor(t *testing.T) {
	h := newAuthHarness(t)
	user := h.register(t)

	_, err := h.service.BecomeAuthor(context.Background(), user.ID)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)

	require.NoError(t, h.users.MarkVerified(context.Background(), user.ID))

	upgraded, err := h.service.BecomeAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAuthor, upgraded.Role)

	// Already an author: the call is a no-op, not an error.
	again, err := h.service.BecomeAuthor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAuthor, again.Role)
}
