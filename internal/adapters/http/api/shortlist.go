package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/pkg/logger"
)

// ShortlistDependencies defines the shortlist read and export operations.
type ShortlistDependencies interface {
	Shortlist(ctx context.Context, jobID string, limit int) ([]model.Entry, error)
	Export(ctx context.Context, jobID string, n int) ([]model.Renamed, error)
}

// ShortlistHandler handles shortlist requests.
type ShortlistHandler struct {
	deps   ShortlistDependencies
	logger logger.Logger
}

// NewShortlistHandler creates a new shortlist handler.
func NewShortlistHandler(deps ShortlistDependencies, l logger.Logger) *ShortlistHandler {
	return &ShortlistHandler{deps: deps, logger: l}
}

// HandleShortlist handles GET /shortlist?job_id=X&limit=N.
func (h *ShortlistHandler) HandleShortlist(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_shortlist"
	ctx := r.Context()

	jobID := strings.TrimSpace(r.URL.Query().Get(fieldJobID))
	if jobID == "" {
		fail(ctx, h.logger, w, op, ErrMissingJobID)
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}

	entries, err := h.deps.Shortlist(ctx, jobID, limit)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleExport handles POST /shortlist/{job_id}/export?limit=N.
func (h *ShortlistHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_shortlist"
	ctx := r.Context()

	jobID := strings.TrimSpace(mux.Vars(r)["job_id"])
	if jobID == "" {
		fail(ctx, h.logger, w, op, ErrMissingJobID)
		return
	}
	n, err := parseLimit(r)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}

	plan, err := h.deps.Export(ctx, jobID, n)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// parseLimit returns 0 when limit is absent.
func parseLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, NewKind("api.parse_limit", ErrBadRequest)
	}
	return n, nil
}
