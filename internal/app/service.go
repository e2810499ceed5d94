// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/shortlist/internal/adapters/google"
	"github.com/okian/shortlist/internal/adapters/mq/queue"
	"github.com/okian/shortlist/internal/adapters/mq/worker"
	"github.com/okian/shortlist/internal/adapters/pdftext"
	"github.com/okian/shortlist/internal/adapters/repository"
	"github.com/okian/shortlist/internal/adapters/storage"
	"github.com/okian/shortlist/internal/domain/dedupe"
	"github.com/okian/shortlist/internal/domain/model"
	"github.com/okian/shortlist/internal/domain/scoring"
	"github.com/okian/shortlist/internal/domain/shortlist"
	"github.com/okian/shortlist/pkg/logger"
	"github.com/okian/shortlist/pkg/metrics"
)

// Upload is one CV file received from a client.
type Upload = model.Upload

// Service implements the API dependencies for CV screening.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	queue      queue.Queue
	workerPool *worker.Pool
	scorer     *scoring.SkillScorer
	extractor  pdftext.Extractor
	files      storage.Store // shortlisted CVs, one file per screened upload
	exports    storage.Store // ranked copies written by Export

	// Optional Google integration
	source        google.CandidateSource
	sink          google.ResultSink
	drive         google.Files
	uploadToDrive bool

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	policy            shortlist.Policy
	maxShortlistLimit int
	shortlistDir      string

	// State
	started   bool
	startedAt time.Time
	runCtx    context.Context
	cancel    context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the task queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequiredSkills sets the job catalogue used for scoring.
func WithRequiredSkills(jobs map[string][]string) Option {
	return func(s *Service) {
		s.scorer = scoring.NewSkillScorer(scoring.WithRequiredSkills(jobs))
	}
}

// WithPolicy sets the shortlist threshold and the number of candidates kept per job.
func WithPolicy(threshold, topN int) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.policy.Threshold = threshold
		}
		if topN > 0 {
			s.policy.TopN = topN
		}
	}
}

// WithMaxShortlistLimit caps the limit accepted by Shortlist.
func WithMaxShortlistLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxShortlistLimit = n
		}
	}
}

// WithShortlistDir sets where exported CVs are written. Shortlisted CVs are
// kept in its candidates subdirectory.
func WithShortlistDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.shortlistDir = dir
		}
	}
}

// WithExtractor replaces the PDF text extractor.
func WithExtractor(e pdftext.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithCandidateSource enables sheet batch screening.
func WithCandidateSource(src google.CandidateSource) Option {
	return func(s *Service) { s.source = src }
}

// WithResultSink appends every screening result to an external sheet.
func WithResultSink(sink google.ResultSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithDrive enables CV download from Drive links and, when upload is true,
// uploading screened CVs.
func WithDrive(files google.Files, upload bool) Option {
	return func(s *Service) {
		s.drive = files
		s.uploadToDrive = upload && files != nil
	}
}

// candidatesDir holds kept CVs under the shortlist directory so that their
// names never meet the <job_id>_<rank>.pdf export names.
const candidatesDir = "candidates"

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU() * 2,
		queueSize:         1000,
		dedupeSize:        10_000,
		policy:            shortlist.Policy{Threshold: 3, TopN: 5},
		maxShortlistLimit: 100,
		shortlistDir:      "shortlisted_cvs",
		extractor:         pdftext.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = scoring.NewSkillScorer()
	}
	s.files = storage.NewFS(filepath.Join(s.shortlistDir, candidatesDir))
	s.exports = storage.NewFS(s.shortlistDir)
	return s
}

// Start initializes and starts the service components. ctx scopes the start
// itself; the workers run until Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting screening service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCtx = runCtx
	s.cancel = cancel

	s.store = repository.NewTreapStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	p := &pipeline{
		extractor:     s.extractor,
		scorer:        s.scorer,
		policy:        s.policy,
		store:         s.store,
		files:         s.files,
		drive:         s.drive,
		sink:          s.sink,
		uploadToDrive: s.uploadToDrive,
		logger:        s.logger.Named("pipeline"),
	}
	s.workerPool = worker.NewPool(s.workerCount, s.queue, p)
	s.workerPool.Start(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "screening service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("threshold", s.policy.Threshold),
		logger.Int("topN", s.policy.TopN),
		logger.Bool("sheet", s.source != nil),
		logger.Bool("drive", s.drive != nil),
	)
	return nil
}

// Stop drains the queue and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping screening service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "screening service stopped")
}

// ScreenUploads screens uploaded CVs for jobID and returns one result per
// upload, in upload order. A CV already screened for the job is answered from
// the store with Duplicate set.
func (s *Service) ScreenUploads(ctx context.Context, jobID string, uploads []Upload) ([]model.Result, error) {
	runCtx, ok := s.running()
	if !ok {
		return nil, ErrNotStarted
	}
	if jobID == "" {
		return nil, ErrMissingJobID
	}
	if len(uploads) == 0 {
		return nil, ErrNoUploads
	}
	if !s.scorer.HasJob(jobID) {
		s.logger.Warn(ctx, "screening uploads for unknown job, every score is 0",
			logger.String("job_id", jobID))
	}

	results := make([]model.Result, len(uploads))
	replies := make([]chan model.Result, len(uploads))
	for i, up := range uploads {
		name := shortlist.CandidateName(up.Filename)
		if name == "" {
			name = fmt.Sprintf("candidate_%d", i+1)
		}
		key := dedupe.Key(jobID, up.Data)

		seen := s.deduper.SeenAndRecord(ctx, key)
		if seen {
			if prev, err := s.store.Get(ctx, jobID, name); err == nil && prev.Key == key {
				metrics.RecordDuplicate()
				prev.Duplicate = true
				results[i] = prev
				s.logger.Debug(ctx, "duplicate upload answered from store",
					logger.String("job_id", jobID), logger.String("candidate", name))
				continue
			}
		}

		reply := make(chan model.Result, 1)
		t := model.Task{
			ID:        uuid.NewString(),
			Candidate: model.Candidate{Name: name, JobID: jobID},
			CV:        up.Data,
			Key:       key,
			Enqueued:  time.Now(),
			Reply:     reply,
		}
		if !s.queue.Enqueue(ctx, t) {
			if !seen {
				s.deduper.Unrecord(ctx, key)
			}
			s.logger.Warn(ctx, "screening queue rejected upload",
				logger.String("job_id", jobID), logger.String("candidate", name))
			return nil, ErrBackpressure
		}
		replies[i] = reply
	}

	if err := await(ctx, runCtx, results, replies); err != nil {
		return nil, err
	}
	return results, nil
}

// ScreenSheet screens every candidate row of the responses sheet.
func (s *Service) ScreenSheet(ctx context.Context) ([]model.Result, error) {
	runCtx, ok := s.running()
	if !ok {
		return nil, ErrNotStarted
	}
	if s.source == nil {
		return nil, ErrSheetDisabled
	}

	candidates, err := s.source.FetchCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCandidateFetch, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	s.logger.Info(ctx, "screening sheet candidates", logger.Int("count", len(candidates)))

	results := make([]model.Result, len(candidates))
	replies := make([]chan model.Result, len(candidates))
	for i, c := range candidates {
		reply := make(chan model.Result, 1)
		t := model.Task{
			ID:        uuid.NewString(),
			Candidate: c,
			Enqueued:  time.Now(),
			Reply:     reply,
		}
		if !s.queue.Enqueue(ctx, t) {
			return nil, ErrBackpressure
		}
		replies[i] = reply
	}

	if err := await(ctx, runCtx, results, replies); err != nil {
		return nil, err
	}

	for job, top := range shortlist.SelectTop(results, s.policy.TopN) {
		names := make([]string, 0, len(top))
		for _, e := range top {
			if e.Shortlisted {
				names = append(names, e.Name)
			}
		}
		s.logger.Info(ctx, "sheet shortlist",
			logger.String("job_id", job),
			logger.Int("ranked", len(top)),
			logger.Any("shortlisted", names),
		)
	}
	return results, nil
}

// await fills results from the reply channels that are set. It gives up when
// the caller goes away or the service stops.
func await(ctx, runCtx context.Context, results []model.Result, replies []chan model.Result) error {
	for i, reply := range replies {
		if reply == nil {
			continue
		}
		select {
		case r := <-reply:
			results[i] = r
		case <-ctx.Done():
			return ctx.Err()
		case <-runCtx.Done():
			return ErrNotStarted
		}
	}
	return nil
}

// Shortlist returns the best candidates of a job. limit < 1 means the
// configured top N; larger values are capped.
func (s *Service) Shortlist(ctx context.Context, jobID string, limit int) ([]model.Entry, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if jobID == "" {
		return nil, ErrMissingJobID
	}
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if limit == 0 {
		limit = s.policy.TopN
	}
	if limit > s.maxShortlistLimit {
		limit = s.maxShortlistLimit
	}
	return s.store.TopN(ctx, jobID, limit)
}

// Export copies the CVs of the top shortlisted candidates of a job to
// <job_id>_<rank>.pdf and returns the rename plan. n < 1 means the
// configured top N.
func (s *Service) Export(ctx context.Context, jobID string, n int) ([]model.Renamed, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	if jobID == "" {
		return nil, ErrMissingJobID
	}
	if n < 1 {
		n = s.policy.TopN
	}

	top, err := s.store.TopN(ctx, jobID, n)
	if err != nil {
		return nil, err
	}
	ranked := make([]model.Entry, 0, len(top))
	for _, e := range top {
		if e.Shortlisted && e.CVPath != "" {
			ranked = append(ranked, e)
		}
	}
	if len(ranked) == 0 {
		return nil, ErrNothingToRank
	}

	plan := shortlist.RenamePlan(jobID, ranked)
	for i, e := range ranked {
		if _, err := s.exports.Copy(ctx, e.CVPath, plan[i].NewName); err != nil {
			return nil, fmt.Errorf("export %s: %w", plan[i].NewName, err)
		}
	}
	s.logger.Info(ctx, "shortlist exported", logger.String("job_id", jobID), logger.Int("count", len(plan)))
	return plan, nil
}

// Jobs returns the job catalogue.
func (s *Service) Jobs(_ context.Context) []model.Job {
	ids := s.scorer.Jobs()
	jobs := make([]model.Job, len(ids))
	for i, id := range ids {
		jobs[i] = model.Job{ID: id, RequiredSkills: s.scorer.RequiredSkills(id)}
	}
	return jobs
}

// SheetEnabled reports whether batch screening from the sheet is available.
func (s *Service) SheetEnabled() bool { return s.source != nil }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"threshold":   s.policy.Threshold,
		"topN":        s.policy.TopN,
		"jobs":        len(s.scorer.Jobs()),
		"sheet":       s.source != nil,
		"drive":       s.drive != nil,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		candidates := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["candidates"] = candidates
		stats["screenedJobs"] = s.store.Jobs(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredCandidates(candidates)
	}
	return stats
}

func (s *Service) isStarted() bool {
	_, ok := s.running()
	return ok
}

// running returns the context the workers run under.
func (s *Service) running() (context.Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, false
	}
	return s.runCtx, true
}
