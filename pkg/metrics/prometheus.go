// Package metrics provides Prometheus metrics for the holoboard ranking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the ranking engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Refresh pipeline
	refreshes      *prometheus.CounterVec
	refreshLatency prometheus.Histogram
	emptyBoards    prometheus.Counter

	// Connector queries
	queries      *prometheus.CounterVec
	queryErrors  *prometheus.CounterVec
	queryLatency prometheus.Histogram

	// Schema validation
	tablesPruned prometheus.Counter
	fieldsPruned prometheus.Counter

	// Offline store
	observations   prometheus.Counter
	offlineRecords prometheus.Gauge
	sweptRecords   prometheus.Counter
	persistErrors  prometheus.Counter

	// Registry health
	connectorsAvailable prometheus.Gauge

	// HTTP surface
	httpRequests    *prometheus.CounterVec
	httpReqDuration prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "holoboard",
		subsystem:        "ranking",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refreshes_total",
		Help:      "Total number of leaderboard refreshes, by board id",
	}, []string{"board"})

	m.refreshLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_latency_ms",
		Help:      "Leaderboard refresh latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.emptyBoards = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "empty_boards_total",
		Help:      "Total number of refreshes that produced an empty board",
	})

	m.queries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connector_queries_total",
		Help:      "Total number of top-N queries, by connector",
	}, []string{"connector"})

	m.queryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connector_query_errors_total",
		Help:      "Total number of failed connector queries, by connector",
	}, []string{"connector"})

	m.queryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connector_query_latency_ms",
		Help:      "Connector query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.tablesPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "schema_tables_pruned_total",
		Help:      "Total number of configured tables dropped by schema validation",
	})

	m.fieldsPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "schema_fields_pruned_total",
		Help:      "Total number of configured fields dropped by schema validation",
	})

	m.observations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_observations_total",
		Help:      "Total number of live observations recorded in the offline store",
	})

	m.offlineRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_records",
		Help:      "Current number of records held in the offline store",
	})

	m.sweptRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_swept_records_total",
		Help:      "Total number of expired offline records removed by sweeps",
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "offline_persist_errors_total",
		Help:      "Total number of failed offline store persistence writes",
	})

	m.connectorsAvailable = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "connectors_available",
		Help:      "Number of connectors that initialized successfully",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpReqDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Registry returns the prometheus registry holding the global metrics.
func Registry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers operating on the global manager.

// RecordRefresh increments the refresh counter for a board.
func RecordRefresh(board string) {
	globalManager.refreshes.WithLabelValues(board).Inc()
}

// RecordRefreshLatency observes a refresh latency in milliseconds.
func RecordRefreshLatency(latencyMs float64) {
	globalManager.refreshLatency.Observe(latencyMs)
}

// RecordEmptyBoard increments the empty-board counter.
func RecordEmptyBoard() {
	globalManager.emptyBoards.Inc()
}

// RecordQuery increments the query counter for a connector.
func RecordQuery(connector string) {
	globalManager.queries.WithLabelValues(connector).Inc()
}

// RecordQueryError increments the query error counter for a connector.
func RecordQueryError(connector string) {
	globalManager.queryErrors.WithLabelValues(connector).Inc()
}

// RecordQueryLatency observes a connector query latency in milliseconds.
func RecordQueryLatency(latencyMs float64) {
	globalManager.queryLatency.Observe(latencyMs)
}

// RecordTablePruned increments the pruned-tables counter.
func RecordTablePruned() {
	globalManager.tablesPruned.Inc()
}

// RecordFieldPruned increments the pruned-fields counter.
func RecordFieldPruned() {
	globalManager.fieldsPruned.Inc()
}

// RecordObservation increments the offline observation counter.
func RecordObservation() {
	globalManager.observations.Inc()
}

// UpdateOfflineRecords sets the offline record count gauge.
func UpdateOfflineRecords(count int) {
	globalManager.offlineRecords.Set(float64(count))
}

// RecordSweptRecords adds to the swept-records counter.
func RecordSweptRecords(count int) {
	globalManager.sweptRecords.Add(float64(count))
}

// RecordPersistError increments the persistence error counter.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// UpdateConnectorsAvailable sets the available-connectors gauge.
func UpdateConnectorsAvailable(count int) {
	globalManager.connectorsAvailable.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(durationMs float64) {
	globalManager.httpReqDuration.Observe(durationMs)
}
