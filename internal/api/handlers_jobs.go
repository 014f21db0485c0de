package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dgallion1/docsite/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handlePreBuild(w http.ResponseWriter, r *http.Request) {
	s.submit(w, pipeline.NewJob(pipeline.KindGenerateAPI))
}

func (s *Server) handleTitleCheck(w http.ResponseWriter, r *http.Request) {
	s.submit(w, pipeline.NewJob(pipeline.KindCheckTitles))
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
