// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/shortlist/internal/adapters/repository"
	service "github.com/okian/shortlist/internal/app"
	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/pkg/logger"
)

const defaultMaxUploadBytes = 32 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScreenDependencies
	ShortlistDependencies
	JobsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	screenHandler    *ScreenHandler
	shortlistHandler *ShortlistHandler
	jobsHandler      *JobsHandler
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	logger         logger.Logger
}

// WithMaxUploadBytes bounds the size of a multipart request body.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Get().Named("api")
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		screenHandler:    NewScreenHandler(deps, cfg.maxUploadBytes, cfg.logger),
		shortlistHandler: NewShortlistHandler(deps, cfg.logger),
		jobsHandler:      NewJobsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(RequestIDMiddleware)

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	r.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandleJobs, "jobs")).Methods(http.MethodGet)
	r.HandleFunc("/process_cvs", MetricsMiddleware(s.screenHandler.HandleProcessCVs, "process_cvs")).Methods(http.MethodPost)
	r.HandleFunc("/process", MetricsMiddleware(s.screenHandler.HandleProcess, "process")).Methods(http.MethodPost)
	r.HandleFunc("/shortlist", MetricsMiddleware(s.shortlistHandler.HandleShortlist, "shortlist")).Methods(http.MethodGet)
	r.HandleFunc("/shortlist/{job_id}/export", MetricsMiddleware(s.shortlistHandler.HandleExport, "export")).Methods(http.MethodPost)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps an error to an HTTP status, a response code and the kind
// recorded on the wrapped error.
func classify(err error) (int, string, error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", ErrTooLarge
	case errors.Is(err, service.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrNoCandidates),
		errors.Is(err, service.ErrNothingToRank),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, service.ErrMissingJobID),
		errors.Is(err, service.ErrNoUploads),
		errors.Is(err, service.ErrSheetDisabled),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrFilesDisabled),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, ErrMissingJobID),
		errors.Is(err, ErrMissingCVFile),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, service.ErrCandidateFetch):
		return http.StatusBadGateway, "upstream_error", ErrUpstream
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}

// fail writes the error response for err. The client sees err's own message;
// the log line carries op and kind.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, op string, err error) {
	status, code, kind := classify(err)
	wrapped := WrapKind(op, kind, err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Int("status", status), logger.Error(wrapped))
	} else {
		l.Debug(ctx, "request rejected", logger.Int("status", status), logger.Error(wrapped))
	}
	writeError(w, status, code, err)
}

// results never encodes as null.
func results(rs []model.Result) []model.Result {
	if rs == nil {
		return []model.Result{}
	}
	return rs
}
