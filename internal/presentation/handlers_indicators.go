package presentation

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const defaultHistoryWindow = 30 * 24 * time.Hour

// handleListActiveIndicators lists every active indicator definition.
func (s *Server) handleListActiveIndicators(w http.ResponseWriter, r *http.Request) {
	defs, err := s.definitions.ListActive(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "indicator store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, defs)
}

// handleGetLatestValue returns an indicator's most recent time-series point.
func (s *Server) handleGetLatestValue(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "indicatorId")
	v, ok, err := s.values.Latest(r.Context(), indicatorID)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "indicator value store unavailable")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no values for indicator "+indicatorID)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// handleGetValueHistory returns an indicator's time series within an
// optional from/to RFC3339 window, defaulting to the trailing 30 days.
func (s *Server) handleGetValueHistory(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "indicatorId")
	from, to, err := parseTimeWindow(r, defaultHistoryWindow)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	series, err := s.values.Range(r.Context(), indicatorID, from, to)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "indicator value store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

// handleGetEvents returns an indicator's events within an optional
// from/to RFC3339 window, defaulting to the trailing 30 days.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	indicatorID := chi.URLParam(r, "indicatorId")
	from, to, err := parseTimeWindow(r, defaultHistoryWindow)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	events, err := s.events.Range(r.Context(), indicatorID, from, to)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "indicator event store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func parseTimeWindow(r *http.Request, defaultWindow time.Duration) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, to := now.Add(-defaultWindow), now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidTimestamp("from", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidTimestamp("to", raw)
		}
		to = parsed
	}
	return from, to, nil
}
