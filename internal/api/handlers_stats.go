package api

import (
	"net/http"
)

func (s *Server) handleUpstreamStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "upstream stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{
		"base_url": s.cfg.GranolaBaseURL,
		"stats":    s.stats.Stats(),
	})
}
