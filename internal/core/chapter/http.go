// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package chapter provides the HTTP interface for reading and managing chapters.

# Routing Strategy

  - Public (v1): Reading endpoints accessible to all visitors (GET /chapters/{id}).
  - Restricted (v1): Mutative endpoints requiring novel ownership.

Serving a chapter is also where view counting begins: the handler resolves
the reader's identity, detaches from the request context, and hands the
view to the counting pipeline in the background. A slow or broken stats
subsystem can never delay or fail the read itself.
*/
package chapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noveris/noveris/internal/platform/constants"
	"github.com/noveris/noveris/internal/platform/ctxutil"
	"github.com/noveris/noveris/internal/platform/middleware"
	requestutil "github.com/noveris/noveris/internal/platform/request"
	"github.com/noveris/noveris/internal/platform/respond"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/stats/view"
	"github.com/noveris/noveris/pkg/pagination"
)

// # Pipeline Contracts

// ViewRecorder runs the view counting pipeline for a served chapter.
// Implemented by the view service.
type ViewRecorder interface {
	RecordView(context context.Context, chapterID string, identity view.Identity)
}

// HistoryToucher records reading progress for signed-in readers.
// Implemented by the library service.
type HistoryToucher interface {
	Touch(context context.Context, userID, novelID, chapterID string) error
}

// # Handler Implementation

// Handler implements the HTTP layer for chapters.
type Handler struct {
	service *Service
	views   ViewRecorder
	history HistoryToucher
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service, views ViewRecorder, history HistoryToucher) *Handler {
	return &Handler{
		service: service,
		views:   views,
		history: history,
	}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
// Chapter endpoints span both /novels/{id}/... and /chapters/... prefixes.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	// Reading endpoints
	api.Get("/novels/{novelID}/chapters", handler.ListChapters)
	api.Get("/chapters/{id}", handler.GetChapter)

	// Ownership-checked mutations (author-or-moderator rule lives in the service)
	api.Group(func(owner chi.Router) {
		owner.Use(middleware.RequireAuth)
		owner.Post("/novels/{novelID}/chapters", handler.CreateChapter)
		owner.Patch("/chapters/{id}", handler.UpdateChapter)
		owner.Delete("/chapters/{id}", handler.DeleteChapter)
	})
}

// # Reading

/*
GET /api/v1/novels/{novelID}/chapters.

Description: Returns a paginated roster of chapters for a novel, in reading
order, bodies excluded.

Request:
  - novelID: string (UUID)
  - extras: bool (Only side stories)
  - dir: string (asc, desc)
  - limit: int
  - page: int

Response:
  - 200: []Chapter: Paginated list
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	novelID := requestutil.ID(request, "novelID")

	paginationParams := pagination.FromRequest(request)

	filter := ChapterFilter{
		ExtrasOnly: request.URL.Query().Get("extras") == "true",
		SortDir:    request.URL.Query().Get("dir"),
	}

	chapters, total, err := handler.service.ListChapters(request.Context(), novelID, filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/chapters/{id}.

Description: Returns the full chapter including its body, then records the
view in the background. The response never waits on, and never reflects,
the outcome of the counting pipeline.

Request:
  - id: string (Chapter UUID)

Response:
  - 200: Chapter: Full entity with body
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	c, err := handler.service.GetChapter(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity := handler.resolveIdentity(writer, request)

	// The reader closing the tab must not cancel the bookkeeping, so the
	// pipeline runs on a context detached from the request.
	detached := context.WithoutCancel(request.Context())
	go handler.views.RecordView(detached, c.ID, identity)

	if !identity.IsAnonymous() {
		go func() {
			// Reading history is a convenience; losing one touch is fine.
			if err := handler.history.Touch(detached, identity.UserID, c.NovelID, c.ID); err != nil {
				ctxutil.GetLogger(detached).Warn("reading_history_touch_failed",
					slog.String("chapter_id", c.ID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	respond.OK(writer, c)
}

// resolveIdentity builds the reader's dedup identity from the request.
//
// Signed-in readers dedup on their account. Anonymous readers get a
// long-lived client token cookie on first contact; until the cookie comes
// back, their IP is the identity.
func (handler *Handler) resolveIdentity(writer http.ResponseWriter, request *http.Request) view.Identity {
	var userID string
	if claims := requestutil.Claims(request); claims != nil {
		userID = claims.UserID
	}

	clientToken := ""
	if cookie, err := request.Cookie(constants.ClientTokenCookieName); err == nil {
		clientToken = cookie.Value
	} else if userID == "" {
		// First anonymous contact: issue the device token. This response's
		// view still dedups on IP; subsequent ones carry the token.
		if token, err := sec.GenerateSecureToken(16); err == nil {
			http.SetCookie(writer, &http.Cookie{
				Name:     constants.ClientTokenCookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(constants.ClientTokenCookieTTL.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	return view.Resolve(userID, clientToken, middleware.RealIP(request))
}

// # Authoring

// createChapterRequest defines the inbound JSON schema for a new chapter.
type createChapterRequest struct {
	Seq       int    `json:"seq"`
	IsExtra   bool   `json:"is_extra"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IsPremium bool   `json:"is_premium"`
	Price     int    `json:"price"`
}

/*
POST /api/v1/novels/{novelID}/chapters.

Description: Publishes a new chapter for a novel the caller owns.

Request:
  - novelID: string (UUID)
  - body: createChapterRequest

Response:
  - 201: Chapter: Created chapter object
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 403: ErrForbidden: Not the owner
  - 409: ErrConflict: Sequence number already taken
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	novelID := requestutil.ID(request, "novelID")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c := &Chapter{
		NovelID:   novelID,
		Seq:       input.Seq,
		IsExtra:   input.IsExtra,
		Title:     input.Title,
		Body:      input.Body,
		IsPremium: input.IsPremium,
		Price:     input.Price,
	}

	if err := handler.service.CreateChapter(request.Context(), c, claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, c)
}

/*
PATCH /api/v1/chapters/{id}.

Description: Applies partial changes to a chapter the caller owns. A body
change recomputes the word count synchronously.

Response:
  - 200: Chapter: Updated entity
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Chapter not found
  - 409: ErrConflict: Sequence number already taken
*/
func (handler *Handler) UpdateChapter(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateChapterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	c, err := handler.service.UpdateChapter(request.Context(), id, input, claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, c)
}

/*
DELETE /api/v1/chapters/{id}.

Description: Soft-deletes a chapter; the novel's latest pointer and derived
statistics follow.

Response:
  - 200: Message: Success
  - 403: ErrForbidden: Not the owner
  - 404: ErrNotFound: Chapter not found
*/
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteChapter(request.Context(), id, claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Chapter deleted"})
}
