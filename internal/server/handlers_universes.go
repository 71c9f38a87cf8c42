package server

import "net/http"

// handleUniverses handles GET /api/universes
func (s *Server) handleUniverses(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"universes": s.app.ScanService.ListUniverses(),
	})
}
