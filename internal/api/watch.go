package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/solheim-lab/hyttevakt/internal/storage"
	"github.com/solheim-lab/hyttevakt/internal/watcher"
)

type checkCabinResult struct {
	CabinID       string `json:"cabin_id"`
	CabinName     string `json:"cabin_name"`
	Tier          string `json:"tier"`
	AvailableDays int    `json:"available_days"`
	Added         int    `json:"added"`
	Removed       int    `json:"removed"`
	Error         string `json:"error,omitempty"`
}

type checkResponse struct {
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Cabins     []checkCabinResult `json:"cabins"`
}

type statusResponse struct {
	Running     bool       `json:"running"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	Cabins      int        `json:"cabins"`
}

// handleTriggerCheck runs a check cycle synchronously and returns its
// per-cabin outcome. A second trigger while a cycle is running gets 409.
func (s *Server) handleTriggerCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.runner.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, watcher.ErrCycleInProgress) {
			writeError(w, http.StatusConflict, "a check cycle is already in progress")
			return
		}
		s.logger.Error("manual check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "check cycle failed")
		return
	}

	resp := checkResponse{
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Cabins:     make([]checkCabinResult, 0, len(result.Cabins)),
	}
	for _, c := range result.Cabins {
		out := checkCabinResult{
			CabinID:       c.CabinID,
			CabinName:     c.CabinName,
			Tier:          c.Tier.String(),
			AvailableDays: c.AvailableDays,
			Added:         c.Added,
			Removed:       c.Removed,
		}
		if c.Err != nil {
			out.Error = c.Err.Error()
		}
		resp.Cabins = append(resp.Cabins, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus reports whether a cycle is running and when the last one
// finished.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Running: s.runner.Running(),
		Cabins:  len(s.registry.All()),
	}
	if last := s.runner.LastChecked(); !last.IsZero() {
		resp.LastChecked = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListNotifications returns recent notification delivery attempts,
// newest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	entries, err := s.notifications.ListNotifications(r.Context(), limit)
	if err != nil {
		s.logger.Error("loading notification log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load notification log")
		return
	}
	if entries == nil {
		entries = []storage.NotificationLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleClearHistory wipes all stored snapshots. The next cycle treats every
// cabin as a first observation.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.ClearAll(r.Context()); err != nil {
		s.logger.Error("clearing history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
