package api

import (
	"context"
	"net/http"

	"github.com/okian/shortlist/internal/domain/model"
)

// JobsDependencies exposes the job catalogue.
type JobsDependencies interface {
	Jobs(ctx context.Context) []model.Job
}

// JobsHandler handles job catalogue requests.
type JobsHandler struct {
	deps JobsDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobsDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleJobs handles GET /jobs.
func (h *JobsHandler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	jobs := h.deps.Jobs(r.Context())
	if jobs == nil {
		jobs = []model.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}
