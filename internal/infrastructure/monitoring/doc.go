/*
Package monitoring provides Prometheus metrics for the analysis server.

All collectors live on a private registry so tests and embedded servers can
create independent instances.

# Metrics

  - HTTP requests: count, latency, request and response size per route
  - Tool executions: calls by status, latency, errors by type
  - Expression cache: hits, misses, entries (via RegisterCache)
  - Streams: open streams, frames sent, WebSocket messages
  - Process: uptime, Go runtime, process collectors

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RegisterCache(func() (uint64, uint64, int) {
		s := cache.Stats()
		return s.Hits, s.Misses, s.Entries
	})

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "calculus.integrate")
	// ... execute tool ...
	timer.Stop("success")
*/
package monitoring
