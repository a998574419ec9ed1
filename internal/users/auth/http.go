// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/apperr"
	"github.com/noveris/noveris/internal/platform/constants"
	"github.com/noveris/noveris/internal/platform/middleware"
	"github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/validate"
)

// # HTTP Handler

// Handler exposes the authentication flows over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs the authentication handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes assembles the /auth sub-router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)
	router.Post("/logout", handler.Logout)
	router.Post("/refresh", handler.Refresh)
	router.Post("/password/forgot", handler.ForgotPassword)
	router.Post("/password/reset", handler.ResetPassword)
	router.Post("/verify", handler.VerifyEmail)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/password/change", handler.ChangePassword)
		protected.Post("/become-author", handler.BecomeAuthor)
	})

	return router
}

// # Cookie Helpers

// setRefreshCookie installs the refresh token as a path-scoped HttpOnly cookie.
func setRefreshCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh cookie immediately.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// sessionResponse is the transport shape for a successful login or refresh.
// The refresh token itself travels only in the cookie.
type sessionResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// # Endpoints

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register handles POST /auth/register.
func (handler *Handler) Register(writer http.ResponseWriter, req *http.Request) {
	var body registerRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.service.Register(req.Context(), RegisterInput{
		Username:    body.Username,
		Email:       body.Email,
		Password:    body.Password,
		DisplayName: body.DisplayName,
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, user)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (handler *Handler) Login(writer http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	err := validate.New().
		Required(FieldLogin, body.Login).
		Required(FieldPassword, body.Password).
		Err()
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	session, err := handler.service.Login(req.Context(), LoginInput{
		Login:     body.Login,
		Password:  body.Password,
		UserAgent: req.UserAgent(),
		IPAddress: middleware.RealIP(req),
	})
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

// Logout handles POST /auth/logout.
func (handler *Handler) Logout(writer http.ResponseWriter, req *http.Request) {
	if cookie, err := req.Cookie(constants.RefreshTokenCookieName); err == nil {
		if err := handler.service.Logout(req.Context(), cookie.Value); err != nil {
			respond.Error(writer, req, err)
			return
		}
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

// Refresh handles POST /auth/refresh, rotating the refresh cookie.
func (handler *Handler) Refresh(writer http.ResponseWriter, req *http.Request) {
	cookie, err := req.Cookie(constants.RefreshTokenCookieName)
	if err != nil {
		respond.Error(writer, req, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.service.RefreshSession(req.Context(), cookie.Value, req.UserAgent(), middleware.RealIP(req))
	if err != nil {
		clearRefreshCookie(writer)
		respond.Error(writer, req, err)
		return
	}

	setRefreshCookie(writer, session.RefreshToken, session.RefreshTokenExpiresAt)
	respond.OK(writer, sessionResponse{AccessToken: session.AccessToken, User: session.User})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /auth/password/forgot.
//
// Always answers 204 so the endpoint reveals nothing about which emails exist.
func (handler *Handler) ForgotPassword(writer http.ResponseWriter, req *http.Request) {
	var body forgotPasswordRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := validate.New().Email(FieldEmail, body.Email).Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if _, err := handler.service.RequestPasswordReset(req.Context(), body.Email); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /auth/password/reset.
func (handler *Handler) ResetPassword(writer http.ResponseWriter, req *http.Request) {
	var body resetPasswordRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := validate.New().Required(FieldToken, body.Token).Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.ResetPassword(req.Context(), body.Token, body.NewPassword); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /auth/password/change.
func (handler *Handler) ChangePassword(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body changePasswordRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.ChangePassword(req.Context(), claims.UserID, body.CurrentPassword, body.NewPassword); err != nil {
		respond.Error(writer, req, err)
		return
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// VerifyEmail handles POST /auth/verify.
func (handler *Handler) VerifyEmail(writer http.ResponseWriter, req *http.Request) {
	var body verifyEmailRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := validate.New().Required(FieldToken, body.Token).Err(); err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.VerifyEmail(req.Context(), body.Token); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// BecomeAuthor handles POST /auth/become-author.
func (handler *Handler) BecomeAuthor(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	user, err := handler.service.BecomeAuthor(req.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, user)
}
