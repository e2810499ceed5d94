// Package pdftext extracts plain text from PDF documents held in memory.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Sentinel kinds for extraction errors.
var (
	ErrNotPDF  = errors.New("not a pdf document")
	ErrExtract = errors.New("pdf text extraction failed")
)

var magic = []byte("%PDF-")

// Extractor turns CV bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// PDFExtractor implements Extractor with github.com/ledongthuc/pdf.
type PDFExtractor struct {
	maxBytes int64
}

// Option applies a configuration option to the PDFExtractor.
type Option func(*PDFExtractor)

// WithMaxBytes bounds the extracted text size.
func WithMaxBytes(n int64) Option {
	return func(e *PDFExtractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// New creates a PDFExtractor.
func New(opts ...Option) *PDFExtractor {
	e := &PDFExtractor{maxBytes: 4 << 20}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsPDF reports whether data starts with the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), magic)
}

// Extract returns the trimmed plain text of every page.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrExtract, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, io.LimitReader(plain, e.maxBytes)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
