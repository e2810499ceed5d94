// Package dedupe remembers which CVs were already screened for a job so a
// repeated upload is answered from the store instead of being re-scored.
package dedupe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Deduper records seen submission keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so the submission can be retried. Used when a
	// key was recorded but the work could not be queued.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the submission key for a CV uploaded for jobID.
func Key(jobID string, cv []byte) string {
	sum := sha256.Sum256(cv)
	return jobID + ":" + hex.EncodeToString(sum[:])
}

// fifoDeduper keeps at most maxSize keys and evicts the oldest first.
// With maxSize <= 0 it never evicts.
type fifoDeduper struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]uint64 // key -> insertion sequence
	order   []slot            // insertion order, may hold stale slots
	seq     uint64
}

type slot struct {
	key string
	seq uint64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &fifoDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	return d
}

// SeenAndRecord atomically checks if key was seen and records it if not.
func (d *fifoDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize && d.evictOldest() {
		}
	}
	d.seq++
	d.seen[key] = d.seq
	d.order = append(d.order, slot{key: key, seq: d.seq})
	return false
}

// Unrecord forgets key.
func (d *fifoDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	d.compact()
}

// evictOldest drops the oldest live key. Must be called with d.mu held.
func (d *fifoDeduper) evictOldest() bool {
	for len(d.order) > 0 {
		s := d.order[0]
		d.order = d.order[1:]
		if d.live(s) {
			delete(d.seen, s.key)
			return true
		}
	}
	return false
}

// compact rebuilds order once stale keys outnumber live ones.
// Must be called with d.mu held.
func (d *fifoDeduper) compact() {
	if len(d.order) <= 2*len(d.seen)+compactSlack {
		return
	}
	live := make([]slot, 0, len(d.seen))
	for _, s := range d.order {
		if d.live(s) {
			live = append(live, s)
		}
	}
	d.order = live
}

// live reports whether s still describes the current record of its key.
func (d *fifoDeduper) live(s slot) bool {
	seq, ok := d.seen[s.key]
	return ok && seq == s.seq
}

// Size returns the current number of remembered keys.
func (d *fifoDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
