// Copyright (c) 2026 Noveris. All rights reserved.

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/middleware"
	"github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/pkg/pagination"
)

// # HTTP Handler

// Handler exposes discussion threads over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs the comment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches comment endpoints to the root API router.
// Reading threads is public; writing requires a signed-in reader.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/novels/{novelID}/comments", handler.ListComments)

	api.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/novels/{novelID}/comments", handler.CreateComment)
		protected.Patch("/comments/{id}", handler.UpdateComment)
		protected.Delete("/comments/{id}", handler.DeleteComment)
	})
}

// # Endpoints

// ListComments handles GET /novels/{novelID}/comments. An optional
// ?chapter= query scopes the page to one chapter's thread.
func (handler *Handler) ListComments(writer http.ResponseWriter, req *http.Request) {
	params := pagination.FromRequest(req)

	var chapterID *string
	if ch := req.URL.Query().Get("chapter"); ch != "" {
		chapterID = &ch
	}

	comments, total, err := handler.service.ListComments(req.Context(), request.ID(req, "novelID"), chapterID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(params.Page, params.Limit, total))
}

type createCommentRequest struct {
	Body      string  `json:"body"`
	ChapterID *string `json:"chapter_id"`
}

// CreateComment handles POST /novels/{novelID}/comments.
func (handler *Handler) CreateComment(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body createCommentRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	c, err := handler.service.CreateComment(req.Context(), CreateCommentInput{
		NovelID:   request.ID(req, "novelID"),
		ChapterID: body.ChapterID,
		Body:      body.Body,
	}, claims)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, c)
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

// UpdateComment handles PATCH /comments/{id}.
func (handler *Handler) UpdateComment(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body updateCommentRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	c, err := handler.service.UpdateComment(req.Context(), request.ID(req, "id"), body.Body, claims)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, c)
}

// DeleteComment handles DELETE /comments/{id}.
func (handler *Handler) DeleteComment(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.DeleteComment(req.Context(), request.ID(req, "id"), claims); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}
