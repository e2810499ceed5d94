// Package shortlist decides which screened candidates make the cut and how
// their CVs are named once exported.
package shortlist

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/shortlist/internal/domain/model"
)

// Policy holds the shortlist rules.
type Policy struct {
	Threshold int // minimum score to shortlist
	TopN      int // candidates kept per job
}

// Shortlisted reports whether score reaches the threshold.
func (p Policy) Shortlisted(score int) bool {
	return score >= p.Threshold
}

// Less orders candidates by score desc, then name asc.
func Less(aScore int, aName string, bScore int, bName string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aName < bName
}

// SelectTop groups results by job and keeps the best n of each, ranked.
// Failed results never rank.
func SelectTop(results []model.Result, n int) map[string][]model.Entry {
	byJob := make(map[string][]model.Result)
	for _, r := range results {
		if r.Failed() {
			continue
		}
		byJob[r.JobID] = append(byJob[r.JobID], r)
	}

	top := make(map[string][]model.Entry, len(byJob))
	for job, rs := range byJob {
		sort.SliceStable(rs, func(i, j int) bool {
			return Less(rs[i].Score, rs[i].Name, rs[j].Score, rs[j].Name)
		})
		if n > 0 && len(rs) > n {
			rs = rs[:n]
		}
		entries := make([]model.Entry, len(rs))
		for i, r := range rs {
			entries[i] = model.Entry{
				Rank:          i + 1,
				Name:          r.Name,
				JobID:         r.JobID,
				Score:         r.Score,
				MatchedSkills: r.MatchedSkills,
				Shortlisted:   r.Shortlisted,
				CVPath:        r.CVPath,
			}
		}
		top[job] = entries
	}
	return top
}

// RenamePlan names ranked CVs <job_id>_<rank>.pdf.
func RenamePlan(jobID string, ranked []model.Entry) []model.Renamed {
	plan := make([]model.Renamed, len(ranked))
	for i, e := range ranked {
		plan[i] = model.Renamed{
			OriginalName:  SafeName(e.Name) + ".pdf",
			NewName:       fmt.Sprintf("%s_%d.pdf", SafeName(jobID), i+1),
			CandidateName: e.Name,
			Score:         e.Score,
		}
	}
	return plan
}

// StoredName is the file name used when a screened CV is uploaded to Drive.
func StoredName(jobID, candidate string) string {
	return SafeName(jobID) + "_" + SafeName(candidate) + ".pdf"
}

// KeptName is the file name of a shortlisted CV before export. The id suffix
// keeps two screenings of the same candidate apart.
func KeptName(jobID, candidate, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return StoredName(jobID, candidate)
	}
	return SafeName(jobID) + "_" + SafeName(candidate) + "_" + SafeName(id) + ".pdf"
}

// CandidateName derives a display name from an uploaded file name.
func CandidateName(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if ext := strings.ToLower(base); strings.HasSuffix(ext, ".pdf") {
		base = base[:len(base)-len(".pdf")]
	}
	return strings.TrimSpace(base)
}

// SafeName makes name usable as a single path element.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	r := strings.NewReplacer(" ", "_", "/", "_", `\`, "_", "..", "_")
	name = r.Replace(name)
	if name == "" || name == "." {
		return "_"
	}
	return name
}
