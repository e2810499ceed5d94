package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/shortlist/internal/adapters/google"
	"github.com/okian/shortlist/internal/adapters/pdftext"
	"github.com/okian/shortlist/internal/domain/model"
)

// textExtractor treats documents starting with "CV:" as PDFs whose text is
// the rest of the bytes.
type textExtractor struct{}

func (textExtractor) Extract(_ context.Context, data []byte) (string, error) {
	s := string(data)
	if !strings.HasPrefix(s, "CV:") {
		return "", fmt.Errorf("%w: fake", pdftext.ErrNotPDF)
	}
	return strings.TrimPrefix(s, "CV:"), nil
}

// blockingExtractor waits for release before extracting.
type blockingExtractor struct {
	release chan struct{}
}

func (b blockingExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return textExtractor{}.Extract(ctx, data)
}

type fakeDrive struct {
	mu       sync.Mutex
	files    map[string][]byte
	uploaded []string
	failUp   bool
}

func (d *fakeDrive) Download(_ context.Context, link string) ([]byte, error) {
	id, err := google.ExtractFileID(link)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: file %s: not found", google.ErrDownload, id)
	}
	return data, nil
}

func (d *fakeDrive) Upload(_ context.Context, name string, r io.Reader) (google.Uploaded, error) {
	if d.failUp {
		return google.Uploaded{}, google.ErrUpload
	}
	if _, err := io.ReadAll(r); err != nil {
		return google.Uploaded{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploaded = append(d.uploaded, name)
	id := fmt.Sprintf("up-%d", len(d.uploaded))
	return google.Uploaded{ID: id, WebLink: "https://drive.google.com/file/d/" + id + "/view"}, nil
}

type fakeSheet struct {
	mu         sync.Mutex
	candidates []model.Candidate
	fetchErr   error
	appended   []model.Result
	appendErr  error
}

func (f *fakeSheet) FetchCandidates(context.Context) ([]model.Candidate, error) {
	return f.candidates, f.fetchErr
}

func (f *fakeSheet) AppendResult(_ context.Context, r model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, r)
	return f.appendErr
}

func (f *fakeSheet) rows() []model.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Result(nil), f.appended...)
}

var errSheetDown = errors.New("sheet down")
