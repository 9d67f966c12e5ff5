// Package server exposes the admin HTTP surface: health, metrics, last run
// status and a manual rebuild trigger.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"IndicatorsQueue/internal/domain"
	"IndicatorsQueue/internal/usecase"
)

// Rebuilder runs a guarded queue rebuild.
type Rebuilder interface {
	RunOnce(ctx context.Context) (domain.RunResult, error)
}

// StatusReader exposes the most recent run.
type StatusReader interface {
	LastRun() (domain.RunResult, bool)
}

// Server is the admin HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New wires handlers onto a chi router listening on addr.
func New(addr string, rebuilder Rebuilder, status StatusReader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(rebuilder, status, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter builds the routing table.
func NewRouter(rebuilder Rebuilder, status StatusReader, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{rebuilder: rebuilder, status: status, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/queue", func(r chi.Router) {
		r.Get("/status", h.queueStatus)
		r.Post("/rebuild", h.rebuild)
	})

	return r
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("admin server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("admin server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type handlers struct {
	rebuilder Rebuilder
	status    StatusReader
	logger    *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (h *handlers) queueStatus(w http.ResponseWriter, r *http.Request) {
	last, ok := h.status.LastRun()
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "no queue has been published yet"})
		return
	}
	render.JSON(w, r, last)
}

func (h *handlers) rebuild(w http.ResponseWriter, r *http.Request) {
	// the run outlives a dropped client connection
	ctx := context.WithoutCancel(r.Context())

	result, err := h.rebuilder.RunOnce(ctx)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.logger.Error("manual rebuild failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: err.Error()})
		return
	}

	h.logger.Info("manual rebuild finished", "queue_id", result.QueueID, "request_id", middleware.GetReqID(r.Context()))
	render.JSON(w, r, result)
}
