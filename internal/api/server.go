// Package api implements the REST API for inspecting cabins, their stored
// availability history, and the watcher's status.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/metrics"
	"github.com/solheim-lab/hyttevakt/internal/storage"
	"github.com/solheim-lab/hyttevakt/internal/watcher"
)

// CycleRunner is the watcher surface the API needs: triggering checks and
// reporting status.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*watcher.CycleResult, error)
	Running() bool
	LastChecked() time.Time
}

// Registry lists configured cabins.
type Registry interface {
	All() []config.Cabin
	Get(id string) (config.Cabin, bool)
}

// Server holds all dependencies for the REST API handlers.
type Server struct {
	registry      Registry
	history       storage.HistoryStore
	notifications storage.NotificationStore
	runner        CycleRunner
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// New creates a new API Server.
func New(registry Registry, history storage.HistoryStore, notifications storage.NotificationStore, runner CycleRunner, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		registry:      registry,
		history:       history,
		notifications: notifications,
		runner:        runner,
		metrics:       m,
		logger:        logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/cabins", s.handleListCabins)
	r.Get("/cabins/{id}", s.handleGetCabin)
	r.Get("/cabins/{id}/history", s.handleCabinHistory)

	r.Post("/check", s.handleTriggerCheck)
	r.Get("/status", s.handleStatus)
	r.Delete("/history", s.handleClearHistory)
	r.Get("/notifications", s.handleListNotifications)
}

// MetricsHandler exposes the Prometheus registry.
func (s *Server) MetricsHandler() http.Handler {
	if s.metrics == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
