// Copyright (c) 2026 Noveris. All rights reserved.

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/middleware"
	"github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/pkg/pagination"
)

// # HTTP Handler

// Handler exposes the reader's shelf over HTTP. Every endpoint requires a
// signed-in reader.
type Handler struct {
	service *Service
}

// NewHandler constructs the library handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the /library endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/library/favorites", handler.ListFavorites)
		protected.Put("/library/favorites/{novelID}", handler.AddFavorite)
		protected.Delete("/library/favorites/{novelID}", handler.RemoveFavorite)
		protected.Get("/library/folders", handler.ListFolders)
		protected.Post("/library/folders", handler.CreateFolder)
		protected.Delete("/library/folders/{id}", handler.DeleteFolder)
		protected.Get("/library/history", handler.ListHistory)
	})
}

// # Favorites

// ListFavorites handles GET /library/favorites. An optional ?folder= query
// scopes the page to one folder.
func (handler *Handler) ListFavorites(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	params := pagination.FromRequest(req)

	var folderID *string
	if folder := req.URL.Query().Get("folder"); folder != "" {
		folderID = &folder
	}

	favorites, total, err := handler.service.ListFavorites(req.Context(), claims.UserID, folderID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, favorites, pagination.NewMeta(params.Page, params.Limit, total))
}

type addFavoriteRequest struct {
	FolderID *string `json:"folder_id"`
}

// AddFavorite handles PUT /library/favorites/{novelID}.
func (handler *Handler) AddFavorite(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	// Body is optional; an empty body shelves the favorite unfiled.
	// A present but malformed body is still a client error.
	var body addFavoriteRequest
	if req.ContentLength != 0 {
		if err := request.DecodeJSON(req, &body); err != nil {
			respond.Error(writer, req, err)
			return
		}
	}

	if err := handler.service.AddFavorite(req.Context(), claims.UserID, request.ID(req, "novelID"), body.FolderID); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// RemoveFavorite handles DELETE /library/favorites/{novelID}.
func (handler *Handler) RemoveFavorite(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.RemoveFavorite(req.Context(), claims.UserID, request.ID(req, "novelID")); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// # Folders

// ListFolders handles GET /library/folders.
func (handler *Handler) ListFolders(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	folders, err := handler.service.ListFolders(req.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.OK(writer, folders)
}

type createFolderRequest struct {
	Name string `json:"name"`
}

// CreateFolder handles POST /library/folders.
func (handler *Handler) CreateFolder(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	var body createFolderRequest
	if err := request.DecodeJSON(req, &body); err != nil {
		respond.Error(writer, req, err)
		return
	}

	folder, err := handler.service.CreateFolder(req.Context(), claims.UserID, body.Name)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Created(writer, folder)
}

// DeleteFolder handles DELETE /library/folders/{id}.
func (handler *Handler) DeleteFolder(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	if err := handler.service.DeleteFolder(req.Context(), claims.UserID, request.ID(req, "id")); err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.NoContent(writer)
}

// # Reading History

// ListHistory handles GET /library/history.
func (handler *Handler) ListHistory(writer http.ResponseWriter, req *http.Request) {
	claims, err := request.RequiredClaims(req)
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	params := pagination.FromRequest(req)
	entries, total, err := handler.service.ListHistory(req.Context(), claims.UserID, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, req, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}
