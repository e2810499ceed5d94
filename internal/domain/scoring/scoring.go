// Package scoring matches CV text against the skills required for a job.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Option applies a configuration option to the SkillScorer.
type Option func(*SkillScorer)

// WithRequiredSkills replaces the job catalogue. Skills are lower-cased,
// trimmed and de-duplicated per job; jobs without skills are dropped.
func WithRequiredSkills(jobs map[string][]string) Option {
	return func(s *SkillScorer) {
		s.jobs = make(map[string][]string, len(jobs))
		for id, skills := range jobs {
			if norm := normalize(skills); len(norm) > 0 {
				s.jobs[id] = norm
			}
		}
	}
}

// Input abstracts what is needed to score one CV.
type Input struct {
	JobID string
	Text  string
}

// Result contains the computed score for a CV.
type Result struct {
	Score   int
	Matched []string
}

// Scorer computes a score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// SkillScorer counts how many required skills appear in the CV text. The
// catalogue is fixed at construction, so a scorer is safe for concurrent use.
type SkillScorer struct {
	jobs map[string][]string
}

// NewSkillScorer creates a scorer with configuration options.
func NewSkillScorer(opts ...Option) *SkillScorer {
	s := &SkillScorer{jobs: make(map[string][]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the number of required skills found in in.Text, matched
// case-insensitively as substrings. Unknown jobs score zero.
func (s *SkillScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}

	skills := s.RequiredSkills(in.JobID)
	text := strings.ToLower(in.Text)

	matched := make([]string, 0, len(skills))
	for _, skill := range skills {
		if strings.Contains(text, skill) {
			matched = append(matched, skill)
		}
	}
	return Result{Score: len(matched), Matched: matched}, nil
}

// RequiredSkills returns a copy of the skills for jobID.
func (s *SkillScorer) RequiredSkills(jobID string) []string {
	skills := s.jobs[jobID]
	out := make([]string, len(skills))
	copy(out, skills)
	return out
}

// HasJob reports whether jobID is in the catalogue.
func (s *SkillScorer) HasJob(jobID string) bool {
	_, ok := s.jobs[jobID]
	return ok
}

// Jobs returns the job ids in lexical order.
func (s *SkillScorer) Jobs() []string {
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalize(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		if _, dup := seen[skill]; dup {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
