// Copyright (c) 2026 Noveris. All rights reserved.

package reconcile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/middleware"
	requestutil "github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/sec"
)

// # Handler Implementation

// Handler exposes the reconciliation sweeps to operators.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reconciliation [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the admin-only reconciliation endpoints.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/admin/reconcile/novels/{id}", handler.ReconcileOne)
		admin.Post("/admin/reconcile/novels", handler.ReconcileAll)
	})
}

/*
POST /api/v1/admin/reconcile/novels/{id}.

Description: Repairs one novel's derived statistics and latest pointer.

Response:
  - 200: Result: Before/after statistics
  - 403: ErrForbidden: Admin role required
  - 404: ErrNotFound: Novel not found
*/
func (handler *Handler) ReconcileOne(writer http.ResponseWriter, request *http.Request) {
	novelID := requestutil.ID(request, "id")

	result, err := handler.service.ReconcileOne(request.Context(), novelID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/admin/reconcile/novels.

Description: Sweeps the whole catalogue. Failures on individual novels are
counted, not fatal.

Response:
  - 200: Summary: Sweep totals
  - 403: ErrForbidden: Admin role required
*/
func (handler *Handler) ReconcileAll(writer http.ResponseWriter, request *http.Request) {
	summary, err := handler.service.ReconcileAll(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}
