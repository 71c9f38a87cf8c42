package server

import (
	"net/http"

	"github.com/bobmcallan/sweep/internal/models"
)

// handleScan handles POST /api/scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ScanRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := s.app.ScanService.Scan(r.Context(), req)
	if err != nil {
		// Validation errors
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Intel && s.app.IntelService.Enabled() {
		resp.Intel = s.app.IntelService.Summarize(r.Context(), resp.Results)
	}

	WriteJSON(w, http.StatusOK, resp)
}
