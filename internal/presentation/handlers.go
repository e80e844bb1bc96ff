package presentation

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func errInvalidTimestamp(param, raw string) error {
	return fmt.Errorf("%s must be RFC3339, got %q", param, raw)
}
