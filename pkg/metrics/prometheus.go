// Package metrics provides Prometheus metrics for the merit scoring pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Ingest metrics
	eventsIngested  prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  prometheus.Counter

	// Pipeline metrics
	eventsFiltered    *prometheus.CounterVec
	botDetections     prometheus.Counter
	commandDetections prometheus.Counter
	chainLatency      *prometheus.HistogramVec
	chainErrors       *prometheus.CounterVec

	// Scoring metrics
	scoringLatency    prometheus.Histogram
	scorerErrors      *prometheus.CounterVec
	scoreDistribution prometheus.Histogram

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// Worker metrics
	workerCount       prometheus.Gauge
	workerErrors      prometheus.Counter
	workerLatency     prometheus.Histogram
	rankingUpdates    prometheus.Counter
	totalContributors prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry so default Go collectors stay out.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "merit",
		subsystem: "pipeline",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.eventsIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_ingested_total",
		Help: "Total number of event envelopes accepted for processing.",
	})
	m.eventsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_duplicate_total",
		Help: "Total number of duplicate event envelopes dropped at ingest.",
	})
	m.eventsRejected = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_rejected_total",
		Help: "Total number of envelopes rejected before enqueueing.",
	})

	m.eventsFiltered = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_filtered_total",
		Help: "Events excluded from scoring, labelled by reason code.",
	}, []string{"reason"})
	m.botDetections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "bot_detections_total",
		Help: "Events whose author was classified as a bot.",
	})
	m.commandDetections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "command_detections_total",
		Help: "Events recognized as slash commands.",
	})
	m.chainLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "chain_duration_ms",
		Help:    "Chain execution latency in milliseconds.",
		Buckets: m.buckets,
	}, []string{"chain"})
	m.chainErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "chain_errors_total",
		Help: "Chain executions aborted by a module error.",
	}, []string{"chain"})

	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "scoring_duration_ms",
		Help:    "Aggregated scoring latency in milliseconds.",
		Buckets: m.buckets,
	})
	m.scorerErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "scorer_errors_total",
		Help: "Scorer failures isolated by the aggregator, labelled by scorer id.",
	}, []string{"scorer"})
	m.scoreDistribution = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "normalized_score",
		Help:    "Distribution of aggregated normalized scores.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Current number of queued envelopes.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured queue capacity.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Queue fill ratio between 0 and 1.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Successful enqueue operations.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Successful dequeue operations.",
	})
	m.queueEnqueueErrs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Enqueue attempts refused due to closure, backpressure, or cancellation.",
	})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of running pipeline workers.",
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Envelope processing failures inside workers.",
	})
	m.workerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "worker_duration_ms",
		Help:    "Per-envelope worker processing latency in milliseconds.",
		Buckets: m.buckets,
	})
	m.rankingUpdates = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ranking_updates_total",
		Help: "Contributor ranking entries improved by a new score.",
	})
	m.totalContributors = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "contributors_total",
		Help: "Number of contributors currently ranked.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: m.buckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the custom registry metrics are collected into.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

func RecordEventIngested()  { globalManager.eventsIngested.Inc() }
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }
func RecordEventRejected()  { globalManager.eventsRejected.Inc() }

func RecordEventFiltered(reason string) { globalManager.eventsFiltered.WithLabelValues(reason).Inc() }
func RecordBotDetection()               { globalManager.botDetections.Inc() }
func RecordCommandDetection()           { globalManager.commandDetections.Inc() }

func RecordChainLatency(chain string, ms float64) {
	globalManager.chainLatency.WithLabelValues(chain).Observe(ms)
}

func RecordChainError(chain string) { globalManager.chainErrors.WithLabelValues(chain).Inc() }

func RecordScoringLatency(ms float64) { globalManager.scoringLatency.Observe(ms) }
func RecordScorerError(scorer string) { globalManager.scorerErrors.WithLabelValues(scorer).Inc() }
func RecordNormalizedScore(s float64) { globalManager.scoreDistribution.Observe(s) }

func UpdateQueueSize(n int)            { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)        { globalManager.queueCapacity.Set(float64(n)) }
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }
func RecordQueueEnqueue()              { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue()              { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError()         { globalManager.queueEnqueueErrs.Inc() }

func UpdateWorkerCount(n int)            { globalManager.workerCount.Set(float64(n)) }
func RecordWorkerError()                 { globalManager.workerErrors.Inc() }
func RecordWorkerLatency(ms float64)     { globalManager.workerLatency.Observe(ms) }
func RecordRankingUpdate()               { globalManager.rankingUpdates.Inc() }
func UpdateTotalContributors(n int)      { globalManager.totalContributors.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
