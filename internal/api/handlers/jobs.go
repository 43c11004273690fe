package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dev-bhaskar8/lp-data/internal/scheduler"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// JobRunner is the part of the scheduler exposed over HTTP
type JobRunner interface {
	RunJob(jobName string) error
	GetJobStats() map[string]scheduler.JobStats
}

// JobsHandler exposes scheduled job status and manual triggers
type JobsHandler struct {
	runner JobRunner
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(runner JobRunner, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		runner: runner,
		logger: log,
	}
}

// GetStats returns per-job run statistics
// GET /api/jobs
func (h *JobsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.runner.GetJobStats())
}

// Trigger starts a job immediately
// POST /api/jobs/{name}/run
func (h *JobsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.runner.RunJob(name); err != nil {
		h.logger.WithError(err).WithField("job", name).Warn("Job trigger rejected")
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
