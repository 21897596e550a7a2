package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	JobID string `json:"job_id"`
}

type jobStatusResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
}

// Generate accepts a prompt, issues a fresh job id, and spawns background
// orchestration. The response returns immediately; completion is observed by
// polling JobStatus.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}

	jobID := uuid.NewString()
	a.Orchestrator.Launch(jobID, req.Prompt)
	a.json(w, http.StatusAccepted, generateResponse{JobID: jobID})
}

// JobStatus reports the current state of a job.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Registry.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, jobStatusResponse{
		JobID:    job.ID,
		Status:   string(job.Status),
		Filename: job.ResultFile,
	})
}
