package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/shortlist/pkg/logger"
)

const (
	processPath   = "/process_cvs"
	maxErrorBytes = 4 << 10
)

// File is one CV to send.
type File struct {
	Name string
	Data []byte
}

// Client posts CVs to the service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("submit")
	}
	return c
}

// Submit sends files for jobID in one request and decodes the results.
// Nothing is retried.
func (c *Client) Submit(ctx context.Context, jobID string, files []File) ([]Result, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrNoJobID
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	body, contentType, err := encodeForm(jobID, files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug(ctx, "submitting cvs", logger.String("url", req.URL.String()),
		logger.String("job_id", jobID), logger.Int("files", len(files)))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error(ctx, "submit failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readErrorMessage(resp.Body)
		c.logger.Error(ctx, "submit rejected", logger.Int("status", resp.StatusCode), logger.String("message", msg))
		return nil, fmt.Errorf("%w: %d %s", ErrStatus, resp.StatusCode, msg)
	}

	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.Error(ctx, "decode response failed", logger.Error(err))
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug(ctx, "cvs screened", logger.Int("results", len(results)))
	return results, nil
}

// ReadFiles loads CV files from disk, named by their base name.
func ReadFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// encodeForm builds the body the upload page posts: job_id and one
// cv_files part per file.
func encodeForm(jobID string, files []File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("job_id", jobID); err != nil {
		return nil, "", fmt.Errorf("write job_id: %w", err)
	}
	for _, f := range files {
		part, err := mw.CreateFormFile("cv_files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// readErrorMessage returns the message of a {code,message} body, or the raw
// body text.
func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBytes))
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		return e.Message
	}
	return strings.TrimSpace(string(raw))
}
