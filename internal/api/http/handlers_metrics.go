package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/grafy/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackExecution starts timing a tool execution. The returned func records
// the outcome; any status other than "success" also counts as an error.
func (hm *HandlerMetrics) TrackExecution(toolID string) func(status string) {
	timer := monitoring.NewTimer(hm.metrics, toolID)
	return func(status string) {
		timer.Stop(status)
		if status != "success" {
			hm.metrics.RecordAnalysisError(toolID, status)
		}
	}
}

// Uptime returns seconds since the metrics were created
func (hm *HandlerMetrics) Uptime() float64 {
	return hm.metrics.GetUptimeSeconds()
}

// Prometheus serves the exposition format
func (hm *HandlerMetrics) Prometheus() gin.HandlerFunc {
	return gin.WrapH(hm.metrics.Handler())
}

// Snapshot serves a JSON summary for dashboards
func (hm *HandlerMetrics) Snapshot(c *gin.Context) {
	snap := hm.metrics.GetSnapshot()

	avgLatency := 0.0
	if snap.RequestCount > 0 {
		avgLatency = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	errorRate := 0.0
	if snap.TotalRequests > 0 {
		errorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": hm.metrics.GetUptimeSeconds(),
		"http":           gin.H{"requests": snap.TotalRequests, "errors": snap.TotalErrors, "error_rate": errorRate, "avg_latency_ms": avgLatency},
		"analysis":       gin.H{"calls": snap.AnalysisCalls, "errors": snap.AnalysisErrors},
		"active_streams": snap.ActiveStreams,
	})
}
