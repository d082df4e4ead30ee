// Copyright (c) 2026 Crescendo. All rights reserved.
// Author: ops@crescendo.live

/*
Package api exposes the operational HTTP surface of the sync engine:
liveness and readiness probes plus a live run-status endpoint.

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/sync are allowed to import net/http server primitives.

The surface is unauthenticated: it is meant to sit behind the container
orchestrator, not on the public internet.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crescendo-live/crescendo/internal/platform/config"
	"github.com/crescendo-live/crescendo/internal/platform/constants"
	"github.com/crescendo-live/crescendo/internal/platform/middleware"
	"github.com/crescendo-live/crescendo/internal/platform/respond"
	"github.com/crescendo-live/crescendo/internal/sync"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups the operational HTTP handlers.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when the database answers.
	Readiness http.HandlerFunc

	// Status serves the current run's progress snapshot on /status.
	Status http.HandlerFunc
}

// NewStatusHandler builds the /status handler from a snapshot source,
// usually Orchestrator.Progress().
func NewStatusHandler(progress *sync.Progress) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, progress.Snapshot())
	}
}

// # Server Initialization

// NewServer constructs the chi router with the middleware chain and registers
// the operational routes.
func NewServer(cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.DefaultWriteTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration plus run status.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Get("/status", h.Status)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("ops_server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
