// Copyright (c) 2026 Noveris. All rights reserved.

package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/middleware"
	"github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/validate"
	"github.com/noveris/noveris/internal/users/auth"
)

// # HTTP Handler

// Handler exposes profiles, author statistics and session management.
type Handler struct {
	service *Service
}

// NewHandler constructs the account handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public profile and private /me endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/users/{username}", handler.GetPublicProfile)
	router.Get("/users/{username}/stats", handler.GetAuthorStats)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.GetMe)
		protected.Patch("/me", handler.UpdateMe)
		protected.Delete("/me", handler.DeleteMe)
		protected.Get("/me/sessions", handler.ListSessions)
		protected.Delete("/me/sessions/{id}", handler.RevokeSession)
		protected.Post("/me/sessions/revoke-others", handler.RevokeOtherSessions)
	})
}

// publicProfile is the outward-facing shape of an account. Email and
// verification state stay private.
type publicProfile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPublicProfile(user *auth.User) publicProfile {
	return publicProfile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt,
	}
}

// # Public Endpoints

// GetPublicProfile handles GET /users/{username}.
func (handler *Handler) GetPublicProfile(writer http.ResponseWriter, req *http.Request) {
	username := request.Param(req, "username")
	if err := validate.New().Required(auth.FieldUsername, username).Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.service.GetProfileByUsername(req.Context(), username)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, toPublicProfile(user))
}

// GetAuthorStats handles GET /users/{username}/stats.
func (handler *Handler) GetAuthorStats(writer http.ResponseWriter, req *http.Request) {
	username := request.Param(req, "username")
	if err := validate.New().Required(auth.FieldUsername, username).Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	stats, err := handler.service.GetAuthorStats(req.Context(), username)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, stats)
}

// # Private Endpoints

// GetMe handles GET /me.
func (handler *Handler) GetMe(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.service.GetProfile(req.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, user)
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// UpdateMe handles PATCH /me.
func (handler *Handler) UpdateMe(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body updateProfileRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.service.UpdateProfile(req.Context(), claims.UserID, UpdateProfileInput{
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, user)
}

// DeleteMe handles DELETE /me.
func (handler *Handler) DeleteMe(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.DeleteAccount(req.Context(), claims); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// ListSessions handles GET /me/sessions.
func (handler *Handler) ListSessions(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	sessions, err := handler.service.ListSessions(req.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, sessions)
}

// RevokeSession handles DELETE /me/sessions/{id}.
func (handler *Handler) RevokeSession(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.RevokeSession(req.Context(), claims.UserID, request.ID(req, "id")); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

type revokeOthersRequest struct {
	KeepSessionID string `json:"keep_session_id"`
}

// RevokeOtherSessions handles POST /me/sessions/revoke-others.
func (handler *Handler) RevokeOtherSessions(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body revokeOthersRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.RevokeOtherSessions(req.Context(), claims.UserID, body.KeepSessionID); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
