// Package metrics provides Prometheus metrics for the shortlist service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the shortlist service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Screening
	cvsScreened      *prometheus.CounterVec
	cvsShortlisted   *prometheus.CounterVec
	cvsDuplicate     prometheus.Counter
	cvsFailed        *prometheus.CounterVec
	matchedSkills    prometheus.Histogram
	scoringLatency   prometheus.Histogram
	extractLatency   prometheus.Histogram
	storedCandidates prometheus.Gauge

	// Google integrations
	externalCalls  *prometheus.CounterVec
	externalErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected prometheus.Counter
	workerCount   prometheus.Gauge
	taskLatency   prometheus.Histogram

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // custom registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, prometheus.DefaultRegisterer unless overridden.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shortlist",
		subsystem:        "screening",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.cvsScreened = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cvs_screened_total",
		Help:      "CVs scored, by job id",
	}, []string{"job_id"})

	m.cvsShortlisted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cvs_shortlisted_total",
		Help:      "CVs that reached the shortlist threshold, by job id",
	}, []string{"job_id"})

	m.cvsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cvs_duplicate_total",
		Help:      "Uploads skipped because the same CV was already screened for the job",
	})

	m.cvsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cvs_failed_total",
		Help:      "CVs that could not be screened, by stage",
	}, []string{"stage"})

	m.matchedSkills = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matched_skills",
		Help:      "Number of required skills matched per CV",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Skill matching latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.extractLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pdf_extract_latency_milliseconds",
		Help:      "PDF text extraction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storedCandidates = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_candidates",
		Help:      "Candidates currently held in the result store",
	})

	m.externalCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "google",
		Name:      "calls_total",
		Help:      "Google API calls by service and operation",
	}, []string{"service", "operation"})

	m.externalErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "google",
		Name:      "errors_total",
		Help:      "Failed Google API calls by service and operation",
	}, []string{"service", "operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "size",
		Help:      "Screening tasks waiting in the queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "capacity",
		Help:      "Maximum number of queued screening tasks",
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "queue",
		Name:      "rejected_total",
		Help:      "Tasks rejected because the queue was full or closed",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "count",
		Help:      "Screening workers running",
	})

	m.taskLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "worker",
		Name:      "task_latency_milliseconds",
		Help:      "End to end screening latency per task in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and type",
	}, []string{"component", "type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_time_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordScreened counts a scored CV and the number of skills it matched.
func RecordScreened(jobID string, matched int) {
	globalManager.cvsScreened.WithLabelValues(jobID).Inc()
	globalManager.matchedSkills.Observe(float64(matched))
}

// RecordShortlisted counts a CV that reached the threshold.
func RecordShortlisted(jobID string) {
	globalManager.cvsShortlisted.WithLabelValues(jobID).Inc()
}

// RecordDuplicate counts an upload answered from the store.
func RecordDuplicate() {
	globalManager.cvsDuplicate.Inc()
}

// RecordFailed counts a CV that failed at stage (download, extract, score, store).
func RecordFailed(stage string) {
	globalManager.cvsFailed.WithLabelValues(stage).Inc()
}

// RecordScoringLatency records skill matching latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordExtractLatency records PDF extraction latency in milliseconds.
func RecordExtractLatency(latencyMs float64) {
	globalManager.extractLatency.Observe(latencyMs)
}

// UpdateStoredCandidates sets the result store size.
func UpdateStoredCandidates(count int) {
	globalManager.storedCandidates.Set(float64(count))
}

// RecordExternalCall counts a Google API call and, when err is non-nil, its failure.
func RecordExternalCall(service, operation string, err error) {
	globalManager.externalCalls.WithLabelValues(service, operation).Inc()
	if err != nil {
		globalManager.externalErrors.WithLabelValues(service, operation).Inc()
	}
}

// RecordHTTPRequest records an HTTP request with its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a rejected enqueue.
func RecordQueueRejected() {
	globalManager.queueRejected.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordTaskLatency records end to end task latency in milliseconds.
func RecordTaskLatency(latencyMs float64) {
	globalManager.taskLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
