// Package dedupe remembers which CVs were already screened for a job.
package dedupe

const (
	defaultMaxSize = 10_000
	compactSlack   = 64
)

// Option applies a configuration option to the in-memory deduper.
type Option func(*fifoDeduper)

// WithMaxSize sets the maximum number of keys to keep in memory.
// If maxSize > 0: bounded, oldest keys are evicted first.
// If maxSize <= 0: unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *fifoDeduper) {
		d.maxSize = maxSize
	}
}
