package server

import (
	"net/http"

	"github.com/bobmcallan/sweep/internal/models"
)

// handleJobsRoot handles POST /api/jobs (create) and GET /api/jobs (list).
func (s *Server) handleJobsRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"jobs": s.app.ScheduleService.List(),
		})
		return
	}

	var spec models.JobSpec
	if !DecodeJSON(w, r, &spec) {
		return
	}

	job, err := s.app.ScheduleService.Add(spec)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("interval", job.Spec.Interval).
		Msg("Scheduled scan registered")

	WriteJSON(w, http.StatusCreated, job)
}

// handleJobGet handles GET /api/jobs/{id}
func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request, id string) {
	job, err := s.app.ScheduleService.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// handleJobRemove handles DELETE /api/jobs/{id}
func (s *Server) handleJobRemove(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.app.ScheduleService.Remove(id); err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	s.logger.Info().Str("job_id", id).Msg("Scheduled scan removed")

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed", "id": id})
}
