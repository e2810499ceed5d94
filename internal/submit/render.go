package submit

import (
	"fmt"
	"io"
)

// NoCandidates is printed for an empty result list.
const NoCandidates = "No candidates shortlisted."

// Render writes results the way the upload page shows them.
func Render(w io.Writer, results []Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, NoCandidates)
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "- %s - Score: %d\n", r.Name, r.Score); err != nil {
			return err
		}
	}
	return nil
}
