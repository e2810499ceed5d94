// Package model contains domain models passed between layers.
package model

// Candidate is one applicant taken from an upload or from a responses sheet row.
type Candidate struct {
	Name   string // display name, derived from the file name for uploads
	JobID  string // job the candidate applied for
	CVLink string // Drive link, empty for direct uploads
}

// Job pairs a job id with the skills CVs are scored against.
type Job struct {
	ID             string   `json:"job_id"`
	RequiredSkills []string `json:"required_skills"`
}

// Result is the outcome of screening one CV. The JSON shape is what the
// upload page renders: at least name and score.
type Result struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	JobID         string   `json:"job_id"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Shortlisted   bool     `json:"shortlisted"`
	DriveFileID   string   `json:"drive_file_id,omitempty"`
	DriveURL      string   `json:"drive_url,omitempty"`
	Duplicate     bool     `json:"duplicate,omitempty"`
	Error         string   `json:"error,omitempty"`

	// CVPath is where the shortlisted copy was written. Not exposed.
	CVPath string `json:"-"`
	// Key is the dedupe key of the screened CV. Not exposed.
	Key string `json:"-"`
}

// Failed reports whether screening stopped before a score was computed.
func (r Result) Failed() bool { return r.Error != "" }

// Entry is a ranked row of a job shortlist.
type Entry struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	JobID         string   `json:"job_id"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	Shortlisted   bool     `json:"shortlisted"`
	CVPath        string   `json:"-"`
}

// Renamed describes one exported CV copy.
type Renamed struct {
	OriginalName  string `json:"original_name"`
	NewName       string `json:"new_name"`
	CandidateName string `json:"candidate_name"`
	Score         int    `json:"score"`
}

// Upload is one CV file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}
