package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Analysis metrics
	AnalysisCalls    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	AnalysisErrors   *prometheus.CounterVec

	// Stream metrics
	StreamsActive prometheus.Gauge
	StreamFrames  prometheus.Counter
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	AnalysisCalls  int64   `json:"analysis_calls"`
	AnalysisErrors int64   `json:"analysis_errors"`
	ActiveStreams  int64   `json:"active_streams"`
	TotalDuration  float64 `json:"total_duration_seconds"` // sum of all request durations
	RequestCount   int64   `json:"request_count"`          // count for averaging
}

// CacheStats reports compiled-expression cache counters.
type CacheStats func() (hits, misses uint64, entries int)

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grafy_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grafy_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grafy_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grafy_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Analysis metrics
		AnalysisCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grafy_analysis_calls_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool", "status"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grafy_analysis_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"tool"},
		),
		AnalysisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grafy_analysis_errors_total",
				Help: "Total number of failed tool executions",
			},
			[]string{"tool", "error_type"},
		),

		// Stream metrics
		StreamsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "grafy_streams_active",
				Help: "Number of open surface streams",
			},
		),
		StreamFrames: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "grafy_stream_frames_total",
				Help: "Total number of surface frames sent",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grafy_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "grafy_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		m.GetUptimeSeconds,
	)

	return m
}

// Registry returns the registry all metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterCache exposes compiled-expression cache counters
func (m *Metrics) RegisterCache(stats CacheStats) {
	factory := promauto.With(m.registry)
	factory.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "grafy_expression_cache_hits_total",
			Help: "Compiled expression cache hits",
		},
		func() float64 { h, _, _ := stats(); return float64(h) },
	)
	factory.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "grafy_expression_cache_misses_total",
			Help: "Compiled expression cache misses",
		},
		func() float64 { _, miss, _ := stats(); return float64(miss) },
	)
	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "grafy_expression_cache_entries",
			Help: "Compiled expressions currently cached",
		},
		func() float64 { _, _, n := stats(); return float64(n) },
	)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordAnalysis records a tool execution
func (m *Metrics) RecordAnalysis(tool, status string, duration time.Duration) {
	m.AnalysisCalls.WithLabelValues(tool, status).Inc()
	m.AnalysisDuration.WithLabelValues(tool).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.AnalysisCalls++
	m.mu.Unlock()
}

// RecordAnalysisError records a failed tool execution
func (m *Metrics) RecordAnalysisError(tool, errorType string) {
	m.AnalysisErrors.WithLabelValues(tool, errorType).Inc()

	m.mu.Lock()
	m.snapshot.AnalysisErrors++
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// RecordFrame counts one streamed surface frame
func (m *Metrics) RecordFrame() {
	m.StreamFrames.Inc()
}

// IncStreams increments open streams
func (m *Metrics) IncStreams() {
	m.StreamsActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveStreams++
	m.mu.Unlock()
}

// DecStreams decrements open streams
func (m *Metrics) DecStreams() {
	m.StreamsActive.Dec()
	m.mu.Lock()
	m.snapshot.ActiveStreams--
	m.mu.Unlock()
}

// GetSnapshot returns a copy of the JSON snapshot
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// GetUptimeSeconds returns seconds since the collector was created
func (m *Metrics) GetUptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
