// Package worker runs screening tasks taken off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/pkg/logger"
	"github.com/okian/shortlist/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Task is what workers read off the queue.
type Task = model.Task

// Processor screens one task. It always returns a result; failures are
// reported in Result.Error.
type Processor interface {
	Process(ctx context.Context, t Task) model.Result
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, t Task) model.Result

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, t Task) model.Result { //nolint:gocritic // hugeParam
	return f(ctx, t)
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Task
}

// Worker processes tasks and delivers their results.
type Worker interface {
	// Run starts the worker loop until ctx is canceled, the queue is drained
	// or Shutdown is called.
	Run(ctx context.Context)

	// Shutdown stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			w.handle(ctx, t)
		}
	}
}

// Shutdown stops the worker and waits for the current task to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, t Task) { //nolint:gocritic // hugeParam: Task is passed by value for channel semantics
	start := time.Now()
	r := w.processor.Process(ctx, t)
	if !t.Enqueued.IsZero() {
		metrics.RecordTaskLatency(float64(time.Since(t.Enqueued).Milliseconds()))
	} else {
		metrics.RecordTaskLatency(float64(time.Since(start).Milliseconds()))
	}

	if r.Error != "" {
		w.logger.Warn(ctx, "screening failed",
			logger.String("task_id", t.ID),
			logger.String("candidate", t.Candidate.Name),
			logger.String("job_id", t.Candidate.JobID),
			logger.String("reason", r.Error),
		)
	}

	if t.Reply == nil {
		return
	}
	select {
	case t.Reply <- r:
	default:
		metrics.RecordErrorByComponent("worker", "reply_dropped")
		w.logger.Error(ctx, "reply channel full, result dropped", logger.String("task_id", t.ID))
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool. workerCount < 1 defaults to NumCPU*2.
func NewPool(workerCount int, queue Queue, processor Processor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(queue, processor, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the queue and lets the workers drain what is left. Workers
// still busy when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			if err := w.Shutdown(shutdownCtx); err != nil {
				timedOut++
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			}
		}
	}
	metrics.UpdateWorkerCount(0)

	if timedOut > 0 {
		return fmt.Errorf("%d workers did not stop: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
