package presentation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetInsightBundle returns a company's latest risk/opportunity
// bundle. A bundle assembled from partial upstream data carries
// degraded: true rather than failing the request (spec.md section 7);
// only a missing persistence layer or an unknown company produces a
// non-200.
func (s *Server) handleGetInsightBundle(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyId")
	bundle, ok, err := s.insights.LatestBundle(r.Context(), companyID)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "insight store unavailable")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "no insights for company "+companyID)
		return
	}
	s.writeJSON(w, http.StatusOK, bundle)
}
