// Copyright (c) 2026 Noveris. All rights reserved.

package novel

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/constants"
	"github.com/noveris/noveris/internal/platform/middleware"
	requestutil "github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for novel management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new novel [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches novel endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	// Discovery endpoints
	api.Get("/novels", handler.ListNovels)
	api.Get("/novels/{id}", handler.GetNovel)
	api.Get("/novels/slug/{slug}", handler.GetNovelBySlug)

	// Author protected endpoints
	api.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))
		author.Post("/novels", handler.CreateNovel)
	})

	// Ownership-checked mutations (author-or-moderator rule lives in the service)
	api.Group(func(owner chi.Router) {
		owner.Use(middleware.RequireAuth)
		owner.Patch("/novels/{id}", handler.UpdateNovel)
		owner.Delete("/novels/{id}", handler.DeleteNovel)
	})
}

// # Discovery

/*
GET /api/v1/novels.

Description: Returns a paginated catalogue listing with derived statistics.

Request:
  - status: string (Comma-separated status filter)
  - author: string (Filter by author UUID)
  - q: string (Title search)
  - sort: string (latest, readers, words, created)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Novel: Paginated list
*/
func (handler *Handler) ListNovels(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		AuthorID: request.URL.Query().Get("author"),
		Query:    request.URL.Query().Get("q"),
		Sort:     request.URL.Query().Get("sort"),
		SortDir:  request.URL.Query().Get("dir"),
	}

	if raw := request.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := Status(strings.TrimSpace(s))
			if status.IsValid() {
				filter.Status = append(filter.Status, status)
			}
		}
	}

	novels, total, err := handler.service.ListNovels(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, novels, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/novels/{id}.

Response:
  - 200: Novel: Full entity including derived statistics
  - 404: ErrNotFound: Novel not found
*/
func (handler *Handler) GetNovel(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	n, err := handler.service.GetNovel(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, n)
}

/*
GET /api/v1/novels/slug/{slug}.

Response:
  - 200: Novel: Full entity including derived statistics
  - 404: ErrNotFound: Novel not found
*/
func (handler *Handler) GetNovelBySlug(writer http.ResponseWriter, request *http.Request) {
	s := requestutil.Param(request, "slug")

	n, err := handler.service.GetNovelBySlug(request.Context(), s)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, n)
}

// # Mutations

// createNovelRequest defines the inbound JSON schema for novel creation.
// Derived statistics are deliberately absent from this surface.
type createNovelRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

/*
POST /api/v1/novels.

Description: Creates a new novel owned by the authenticated author.

Request:
  - body: createNovelRequest

Response:
  - 201: Novel: Created novel object
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Author role required
  - 409: ErrConflict: Slug already taken
*/
func (handler *Handler) CreateNovel(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createNovelRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	n := &Novel{
		AuthorID:    claims.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}

	if err := handler.service.CreateNovel(request.Context(), n); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, n)
}

/*
PATCH /api/v1/novels/{id}.

Description: Applies partial metadata changes. Status transitions trigger
the lifecycle coordinator behind the scenes.

Request:
  - id: string (UUID)
  - body: UpdateNovelInput

Response:
  - 200: Novel: Updated entity
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Novel not found
*/
func (handler *Handler) UpdateNovel(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateNovelInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	n, err := handler.service.UpdateNovel(request.Context(), id, input, claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, n)
}

/*
DELETE /api/v1/novels/{id}.

Description: Soft-deletes the novel and all of its chapters.

Response:
  - 200: Message: Success
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Novel not found
*/
func (handler *Handler) DeleteNovel(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteNovel(request.Context(), id, claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Novel deleted"})
}
