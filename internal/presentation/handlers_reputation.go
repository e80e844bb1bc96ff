package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetReputation returns one source's current reputation row.
func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceId")
	rep, ok, err := s.reputation.Get(r.Context(), sourceID)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "reputation store unavailable")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no reputation for source "+sourceID)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

// handleGetReputationHistory returns a source's reputation history within
// an optional from/to RFC3339 window, defaulting to the trailing 30 days.
func (s *Server) handleGetReputationHistory(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceId")
	from, to, err := parseTimeWindow(r, defaultHistoryWindow)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	points, err := s.reputation.History(r.Context(), sourceID, from, to)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "reputation store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}
