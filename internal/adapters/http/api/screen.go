package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/pkg/logger"
)

const (
	fieldJobID   = "job_id"
	fieldCVFiles = "cv_files"
	fieldCVFile  = "cv_file"

	multipartMemory = 8 << 20
)

// ScreenDependencies defines the screening operations used by ScreenHandler.
type ScreenDependencies interface {
	ScreenUploads(ctx context.Context, jobID string, uploads []model.Upload) ([]model.Result, error)
	ScreenSheet(ctx context.Context) ([]model.Result, error)
	SheetEnabled() bool
}

// ScreenHandler handles CV screening requests.
type ScreenHandler struct {
	deps     ScreenDependencies
	maxBytes int64
	logger   logger.Logger
}

// NewScreenHandler creates a new screening handler.
func NewScreenHandler(deps ScreenDependencies, maxBytes int64, l logger.Logger) *ScreenHandler {
	return &ScreenHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

// HandleProcessCVs handles POST /process_cvs. Uploaded cv_files are screened
// against job_id; without files the configured responses sheet is screened.
func (h *ScreenHandler) HandleProcessCVs(w http.ResponseWriter, r *http.Request) {
	const op = "api.process_cvs"
	ctx := r.Context()

	jobID, uploads, err := h.readForm(w, r, fieldCVFiles, fieldCVFile)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}

	if len(uploads) == 0 {
		if !h.deps.SheetEnabled() {
			fail(ctx, h.logger, w, op, WrapKind(op, ErrBadRequest, errors.New("no cv_files uploaded")))
			return
		}
		rs, err := h.deps.ScreenSheet(ctx)
		if err != nil {
			fail(ctx, h.logger, w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, results(rs))
		return
	}

	if jobID == "" {
		fail(ctx, h.logger, w, op, ErrMissingJobID)
		return
	}
	rs, err := h.deps.ScreenUploads(ctx, jobID, uploads)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}
	h.logger.Info(ctx, "cvs screened", logger.String("job_id", jobID), logger.Int("count", len(rs)))
	writeJSON(w, http.StatusOK, results(rs))
}

// HandleProcess handles POST /process: one cv_file screened against job_id.
func (h *ScreenHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	const op = "api.process"
	ctx := r.Context()

	jobID, uploads, err := h.readForm(w, r, fieldCVFile)
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}
	switch {
	case len(uploads) == 0:
		fail(ctx, h.logger, w, op, ErrMissingCVFile)
		return
	case jobID == "":
		fail(ctx, h.logger, w, op, ErrMissingJobID)
		return
	}

	rs, err := h.deps.ScreenUploads(ctx, jobID, uploads[:1])
	if err != nil {
		fail(ctx, h.logger, w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rs[0])
}

// readForm parses the request body and returns job_id and the files of the
// given fields, in field then submission order. A body that is not
// multipart yields no files.
func (h *ScreenHandler) readForm(w http.ResponseWriter, r *http.Request, fields ...string) (string, []model.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return "", nil, WrapKind("api.read_form", ErrBadRequest, err)
		}
		return strings.TrimSpace(r.FormValue(fieldJobID)), nil, nil
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > h.maxBytes {
			return "", nil, WrapKind("api.read_form", ErrTooLarge, err)
		}
		return "", nil, WrapKind("api.read_form", ErrBadRequest, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	jobID := strings.TrimSpace(r.FormValue(fieldJobID))
	var uploads []model.Upload
	for _, field := range fields {
		for _, fh := range r.MultipartForm.File[field] {
			data, err := readPart(fh)
			if err != nil {
				return "", nil, WrapKind("api.read_form", ErrBadRequest, err)
			}
			uploads = append(uploads, model.Upload{Filename: fh.Filename, Data: data})
		}
	}
	return jobID, uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return data, nil
}
