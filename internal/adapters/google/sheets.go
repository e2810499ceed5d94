package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/pkg/metrics"
)

const (
	defaultResponsesRange = "Form Responses 1"
	defaultResultsRange   = "Results!A:F"
)

// Sheets reads candidate rows from a form responses range and appends
// results to a results range of the same spreadsheet.
type Sheets struct {
	values         *sheets.SpreadsheetsValuesService
	spreadsheetID  string
	responsesRange string
	resultsRange   string
}

// SheetsOption applies a configuration option to Sheets.
type SheetsOption func(*Sheets)

// WithResponsesRange sets the A1 range holding form responses.
func WithResponsesRange(r string) SheetsOption {
	return func(s *Sheets) {
		if r != "" {
			s.responsesRange = r
		}
	}
}

// WithResultsRange sets the A1 range results are appended to.
func WithResultsRange(r string) SheetsOption {
	return func(s *Sheets) {
		if r != "" {
			s.resultsRange = r
		}
	}
}

// NewSheets builds a Sheets client. clientOpts are passed to the API client,
// typically option.WithCredentialsFile.
func NewSheets(ctx context.Context, spreadsheetID string, clientOpts []option.ClientOption, opts ...SheetsOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is empty", ErrDisabled)
	}
	clientOpts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, clientOpts...)
	srv, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create service: %w", ErrSheet, err)
	}
	s := &Sheets{
		values:         srv.Spreadsheets.Values,
		spreadsheetID:  spreadsheetID,
		responsesRange: defaultResponsesRange,
		resultsRange:   defaultResultsRange,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchCandidates reads the responses range. The first row is the header.
func (s *Sheets) FetchCandidates(ctx context.Context) ([]model.Candidate, error) {
	resp, err := s.values.Get(s.spreadsheetID, s.responsesRange).Context(ctx).Do()
	metrics.RecordExternalCall(serviceSheets, "get", err)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrSheet, s.responsesRange, err)
	}
	return CandidatesFromRows(resp.Values), nil
}

// AppendResult appends one result row.
func (s *Sheets) AppendResult(ctx context.Context, r model.Result) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{ResultRow(r)}}
	_, err := s.values.Append(s.spreadsheetID, s.resultsRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	metrics.RecordExternalCall(serviceSheets, "append", err)
	if err != nil {
		return fmt.Errorf("%w: append %s: %w", ErrSheet, s.resultsRange, err)
	}
	return nil
}

// CandidatesFromRows converts sheet rows to candidates. The header row is
// skipped and rows with fewer than three cells are ignored. Columns are
// name, job id and CV link.
func CandidatesFromRows(rows [][]interface{}) []model.Candidate {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]model.Candidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 3 {
			continue
		}
		c := model.Candidate{
			Name:   cell(row[0]),
			JobID:  cell(row[1]),
			CVLink: cell(row[2]),
		}
		if c.Name == "" || c.CVLink == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ResultRow is the results sheet layout:
// name, job id, drive url, score, shortlisted, matched skills.
func ResultRow(r model.Result) []interface{} {
	shortlisted := "No"
	if r.Shortlisted {
		shortlisted = "Yes"
	}
	return []interface{}{
		r.Name,
		r.JobID,
		r.DriveURL,
		r.Score,
		shortlisted,
		strings.Join(r.MatchedSkills, ","),
	}
}

func cell(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
