package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/internal/domain/shortlist"
	"github.com/okian/shortlist/pkg/metrics"
)

// Treap-based, in-memory Store implementation with one tree per job.
//
// Ordering: score DESC, then name ASC. "less" means ranks earlier, so an
// in-order traversal yields the shortlist from best to worst. Node sizes give
// the rank of a candidate without walking the whole tree.

type node struct {
	name  string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore int, aName string, bScore int, bName string) bool {
	return shortlist.Less(aScore, aName, bScore, bName)
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priority hashes the name (FNV-1a) so tree shape does not depend on
// insertion order.
func priority(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

func insert(n *node, name string, score int) *node {
	if n == nil {
		return &node{name: name, score: score, prio: priority(name), size: 1}
	}
	if less(score, name, n.score, n.name) {
		n.left = insert(n.left, name, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, name, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, name string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && name == n.name {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, name, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, name, score)
		}
	} else if less(score, name, n.score, n.name) {
		n.left = deleteNode(n.left, name, score)
	} else {
		n.right = deleteNode(n.right, name, score)
	}
	fix(n)
	return n
}

// position returns the 1-based in-order index of (score, name).
func position(n *node, name string, score int) int {
	pos := 0
	for n != nil {
		switch {
		case score == n.score && name == n.name:
			return pos + nsize(n.left) + 1
		case less(score, name, n.score, n.name):
			n = n.left
		default:
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit names in rank order.
func collectTopN(n *node, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.name)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

type board struct {
	root   *node
	byName map[string]model.Result
}

// TreapStore implements Store.
type TreapStore struct {
	mu     sync.RWMutex
	boards map[string]*board
	count  int

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTreapStore constructs a treap store and starts its metrics updater,
// which stops when ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		boards:                make(map[string]*board),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background goroutine.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// UpdateBest implements Store.UpdateBest in O(log n) expected time.
// A tie with the stored score keeps the earlier result.
func (s *TreapStore) UpdateBest(_ context.Context, r model.Result) (bool, error) {
	if r.JobID == "" || r.Name == "" {
		metrics.RecordErrorByComponent("repository", "invalid_result")
		return false, ErrInvalidResult
	}

	s.mu.Lock()
	b, ok := s.boards[r.JobID]
	if !ok {
		b = &board{byName: make(map[string]model.Result)}
		s.boards[r.JobID] = b
	}
	if old, ok := b.byName[r.Name]; ok {
		if r.Score <= old.Score {
			s.mu.Unlock()
			return false, nil
		}
		b.root = deleteNode(b.root, r.Name, old.Score)
	} else {
		s.count++
	}
	r.Duplicate = false
	b.byName[r.Name] = r
	b.root = insert(b.root, r.Name, r.Score)
	count := s.count
	s.mu.Unlock()

	metrics.UpdateStoredCandidates(count)
	return true, nil
}

// Get implements Store.Get.
func (s *TreapStore) Get(_ context.Context, jobID, name string) (model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.boards[jobID]; ok {
		if r, ok := b.byName[name]; ok {
			return r, nil
		}
	}
	return model.Result{}, ErrNotFound
}

// Rank implements Store.Rank in O(log n) expected time.
func (s *TreapStore) Rank(_ context.Context, jobID, name string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[jobID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Entry{}, ErrNotFound
	}
	r, ok := b.byName[name]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Entry{}, ErrNotFound
	}
	return entry(position(b.root, name, r.Score), r), nil
}

// TopN implements Store.TopN. Ranks are consecutive from 1. An unknown job
// yields an empty list.
func (s *TreapStore) TopN(_ context.Context, jobID string, n int) ([]model.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[jobID]
	if !ok {
		return []model.Entry{}, nil
	}
	names := make([]string, 0, min(n, len(b.byName)))
	collectTopN(b.root, n, &names)

	out := make([]model.Entry, len(names))
	for i, name := range names {
		out[i] = entry(i+1, b.byName[name])
	}
	return out, nil
}

// Count returns the number of candidates across all jobs.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Jobs implements Store.Jobs.
func (s *TreapStore) Jobs(_ context.Context) []string {
	s.mu.RLock()
	jobs := make([]string, 0, len(s.boards))
	for id := range s.boards {
		jobs = append(jobs, id)
	}
	s.mu.RUnlock()
	sort.Strings(jobs)
	return jobs
}

func entry(rank int, r model.Result) model.Entry {
	return model.Entry{
		Rank:          rank,
		Name:          r.Name,
		JobID:         r.JobID,
		Score:         r.Score,
		MatchedSkills: r.MatchedSkills,
		Shortlisted:   r.Shortlisted,
		CVPath:        r.CVPath,
	}
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredCandidates(s.Count(ctx))
			}
		}
	}()
}
