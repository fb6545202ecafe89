package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solheim-lab/hyttevakt/internal/availability"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 100
)

type cabinSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Enabled       bool       `json:"enabled"`
	AvailableDays int        `json:"available_days"`
	Weekends      int        `json:"weekends"`
	LastObserved  *time.Time `json:"last_observed,omitempty"`
}

type cabinDetail struct {
	cabinSummary
	Days         []string `json:"days"`
	WeekendDates []string `json:"weekend_dates"`
}

// handleListCabins returns every configured cabin with a summary of its most
// recent snapshot.
func (s *Server) handleListCabins(w http.ResponseWriter, r *http.Request) {
	cabins := s.registry.All()
	out := make([]cabinSummary, 0, len(cabins))
	for _, cabin := range cabins {
		summary, err := s.summarize(r, cabin.ID, cabin.Name, cabin.Description, cabin.Enabled)
		if err != nil {
			s.logger.Error("loading latest snapshot", "cabin_id", cabin.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load cabin history")
			return
		}
		out = append(out, summary)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetCabin returns one cabin with its full latest day list.
func (s *Server) handleGetCabin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cabin, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "cabin not found")
		return
	}

	summary, err := s.summarize(r, cabin.ID, cabin.Name, cabin.Description, cabin.Enabled)
	if err != nil {
		s.logger.Error("loading latest snapshot", "cabin_id", cabin.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cabin history")
		return
	}

	detail := cabinDetail{cabinSummary: summary, Days: []string{}, WeekendDates: []string{}}
	latest, err := s.history.Latest(r.Context(), cabin.ID)
	if err == nil && latest != nil {
		for _, day := range latest.Days.Sorted() {
			detail.Days = append(detail.Days, day.String())
		}
		for _, weekend := range availability.Weekends(latest.Days) {
			detail.WeekendDates = append(detail.WeekendDates, weekend.Friday.String())
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleCabinHistory returns stored snapshots for a cabin, newest first.
func (s *Server) handleCabinHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.registry.Get(id); !ok {
		writeError(w, http.StatusNotFound, "cabin not found")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	records, err := s.history.History(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("loading history", "cabin_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cabin history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) summarize(r *http.Request, id, name, description string, enabled bool) (cabinSummary, error) {
	summary := cabinSummary{
		ID:          id,
		Name:        name,
		Description: description,
		Enabled:     enabled,
	}

	latest, err := s.history.Latest(r.Context(), id)
	if err != nil {
		return summary, err
	}
	if latest != nil {
		observed := latest.ObservedAt
		summary.LastObserved = &observed
		summary.AvailableDays = len(latest.Days)
		summary.Weekends = len(availability.Weekends(latest.Days))
	}
	return summary, nil
}
