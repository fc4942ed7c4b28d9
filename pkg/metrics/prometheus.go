// Package metrics provides Prometheus metrics for the rankdesk session service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Editor Metrics - editing surface activity
	editorsOpened   prometheus.Counter
	editorsClosed   prometheus.Counter
	activeEditors   prometheus.Gauge
	gridResizes     *prometheus.CounterVec
	modeConversions *prometheus.CounterVec

	// Submission Metrics - what really matters for the pipeline
	submissionsAccepted  prometheus.Counter
	submissionsApplied   prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  *prometheus.CounterVec

	// Queue Metrics - submission queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Worker Metrics - processing performance
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Standings Metrics - store write performance
	standingsUpdates       prometheus.Counter
	standingsUpdateLatency prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rankdesk",
		subsystem:        "sessions",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Editor Metrics
	m.editorsOpened = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "editors_opened_total",
		Help:      "Total number of editors opened",
	})

	m.editorsClosed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "editors_closed_total",
		Help:      "Total number of editors closed",
	})

	m.activeEditors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_editors",
		Help:      "Current number of open editors",
	})

	m.gridResizes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "grid_resizes_total",
			Help:      "Total number of table resizes by row kind",
		},
		[]string{"kind"},
	)

	m.modeConversions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "mode_conversions_total",
			Help:      "Total number of mode conversions by target mode",
		},
		[]string{"target"},
	)

	// Submission Metrics
	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of submissions accepted into the queue",
	})

	m.submissionsApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_applied_total",
		Help:      "Total number of submissions applied to the standings",
	})

	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_duplicate_total",
		Help:      "Total number of duplicate submissions detected",
	})

	m.submissionsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "submissions_rejected_total",
			Help:      "Total number of rejected submissions by reason",
		},
		[]string{"reason"},
	)

	// Queue Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the submission queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of submissions enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of submissions dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "queue_enqueue_errors_total",
			Help:      "Total number of enqueue errors by reason",
		},
		[]string{"reason"},
	)

	// Worker Metrics
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of active workers (processing capacity)",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	// Standings Metrics
	m.standingsUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_updates_total",
		Help:      "Total number of standings updates (indicates active competition)",
	})

	m.standingsUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_update_latency_milliseconds",
		Help:      "Standings update latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of HTTP errors by endpoint and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Editor metrics.

// RecordEditorOpened increments the opened-editors counter.
func RecordEditorOpened() {
	if globalManager.enabled {
		globalManager.editorsOpened.Inc()
	}
}

// RecordEditorClosed increments the closed-editors counter.
func RecordEditorClosed() {
	if globalManager.enabled {
		globalManager.editorsClosed.Inc()
	}
}

// UpdateActiveEditors sets the open-editor gauge.
func UpdateActiveEditors(count int) {
	if globalManager.enabled {
		globalManager.activeEditors.Set(float64(count))
	}
}

// RecordGridResize increments the resize counter for a row kind.
func RecordGridResize(kind string) {
	if globalManager.enabled {
		globalManager.gridResizes.WithLabelValues(kind).Inc()
	}
}

// RecordModeConversion increments the conversion counter for a target mode.
func RecordModeConversion(target string) {
	if globalManager.enabled {
		globalManager.modeConversions.WithLabelValues(target).Inc()
	}
}

// Submission metrics.

// RecordSubmissionAccepted increments the accepted-submissions counter.
func RecordSubmissionAccepted() {
	if globalManager.enabled {
		globalManager.submissionsAccepted.Inc()
	}
}

// RecordSubmissionApplied increments the applied-submissions counter.
func RecordSubmissionApplied() {
	if globalManager.enabled {
		globalManager.submissionsApplied.Inc()
	}
}

// RecordSubmissionDuplicate increments the duplicate-submissions counter.
func RecordSubmissionDuplicate() {
	if globalManager.enabled {
		globalManager.submissionsDuplicate.Inc()
	}
}

// RecordSubmissionRejected increments the rejected-submissions counter.
func RecordSubmissionRejected(reason string) {
	if globalManager.enabled {
		globalManager.submissionsRejected.WithLabelValues(reason).Inc()
	}
}

// Queue metrics.

// UpdateQueueSize sets the queue size gauge.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

// Worker metrics.

// UpdateWorkerCount sets the worker count gauge.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// Standings metrics.

// RecordStandingsUpdate increments the standings update counter.
func RecordStandingsUpdate() {
	if globalManager.enabled {
		globalManager.standingsUpdates.Inc()
	}
}

// RecordStandingsUpdateLatency records a standings write latency.
func RecordStandingsUpdateLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.standingsUpdateLatency.Observe(latencyMs)
	}
}

// HTTP metrics.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records the HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint increments the per-endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// System metrics.

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records a garbage collection pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}
