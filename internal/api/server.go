// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package api wires the HTTP router, middleware chain and every domain handler
into a runnable [http.Server].

Architecture:

  - This package is the topmost presentation boundary.
  - It is the composition root for the chi router.
  - Only this package and cmd/api import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/noveris/noveris/internal/core/chapter"
	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/library"
	"github.com/noveris/noveris/internal/platform/config"
	"github.com/noveris/noveris/internal/platform/constants"
	"github.com/noveris/noveris/internal/platform/metrics"
	"github.com/noveris/noveris/internal/platform/middleware"
	"github.com/noveris/noveris/internal/social/comment"
	"github.com/noveris/noveris/internal/stats/reconcile"
	"github.com/noveris/noveris/internal/users/account"
	"github.com/noveris/noveris/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server]. Constructed once in
// main with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups every domain handler set. A new domain adds a field here;
// server.go needs no other change.
type Handlers struct {
	// Liveness answers /health whenever the process is alive.
	Liveness http.HandlerFunc

	// Readiness answers /ready once every dependency responds.
	Readiness http.HandlerFunc

	// Auth handles registration, login and session rotation.
	Auth *auth.Handler

	// Account handles profiles, author stats and device sessions.
	Account *account.Handler

	// Novel handles the catalogue.
	Novel *novel.Handler

	// Chapter handles chapter reading and publishing.
	Chapter *chapter.Handler

	// Library handles favorites, folders and reading history.
	Library *library.Handler

	// Comment handles discussion threads.
	Comment *comment.Handler

	// Reconcile handles the admin statistics repair endpoints.
	Reconcile *reconcile.Handler
}

// # Server Initialization

// NewServer assembles the chi router with the full middleware chain and
// registers every route group.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, gatherer prometheus.Gatherer, h Handlers) *Server {
	router := chi.NewRouter()

	// # Middleware Chain
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(log))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(context))
	router.Use(middleware.PanicRecovery(log))
	router.Use(middleware.Authenticate(verifier))
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	router.Get("/health", h.Liveness)
	router.Get("/ready", h.Readiness)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	// # Application API
	router.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		h.Account.RegisterRoutes(api)
		h.Novel.RegisterRoutes(api)
		h.Chapter.RegisterRoutes(api)
		h.Library.RegisterRoutes(api)
		h.Comment.RegisterRoutes(api)
		h.Reconcile.RegisterRoutes(api)
	})

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server and blocks until it closes.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
