package google

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/okian/shortlist/pkg/metrics"
)

// Drive downloads candidate CVs and uploads screened copies.
type Drive struct {
	files    *drive.FilesService
	folderID string
	maxBytes int64
}

// DriveOption applies a configuration option to Drive.
type DriveOption func(*Drive)

// WithFolder sets the parent folder for uploads.
func WithFolder(id string) DriveOption {
	return func(d *Drive) { d.folderID = id }
}

// WithMaxDownloadBytes bounds downloaded file size.
func WithMaxDownloadBytes(n int64) DriveOption {
	return func(d *Drive) {
		if n > 0 {
			d.maxBytes = n
		}
	}
}

// NewDrive builds a Drive client.
func NewDrive(ctx context.Context, clientOpts []option.ClientOption, opts ...DriveOption) (*Drive, error) {
	clientOpts = append([]option.ClientOption{option.WithScopes(drive.DriveScope)}, clientOpts...)
	srv, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create service: %w", ErrDownload, err)
	}
	d := &Drive{files: srv.Files, maxBytes: maxDownloadBytes}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Download fetches the media of the file referenced by link.
func (d *Drive) Download(ctx context.Context, link string) ([]byte, error) {
	id, err := ExtractFileID(link)
	if err != nil {
		return nil, err
	}
	resp, err := d.files.Get(id).Context(ctx).Download()
	metrics.RecordExternalCall(serviceDrive, "download", err)
	if err != nil {
		return nil, fmt.Errorf("%w: file %s: %w", ErrDownload, id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: file %s: status %d", ErrDownload, id, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: file %s: %w", ErrDownload, id, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes", ErrDownload, id, d.maxBytes)
	}
	return data, nil
}

// Upload creates name under the configured folder and returns its id and
// web view link.
func (d *Drive) Upload(ctx context.Context, name string, content io.Reader) (Uploaded, error) {
	f := &drive.File{Name: name}
	if d.folderID != "" {
		f.Parents = []string{d.folderID}
	}
	created, err := d.files.Create(f).Media(content).Fields("id", "webViewLink").Context(ctx).Do()
	metrics.RecordExternalCall(serviceDrive, "upload", err)
	if err != nil {
		return Uploaded{}, fmt.Errorf("%w: %s: %w", ErrUpload, name, err)
	}
	return Uploaded{ID: created.Id, WebLink: created.WebViewLink}, nil
}
