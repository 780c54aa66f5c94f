/*
Package http implements the REST endpoints of the analysis server.

# Routes

	GET  /                   service banner
	GET  /health             registry, preset and cache status
	GET  /services           service definitions, optional ?category=
	POST /services/discover  rank services for a free-text intent
	POST /services/execute   run one tool: {"tool_id": "...", "params": {...}}
	GET  /presets            preset surfaces, optional ?tag=
	GET  /presets/:id        one preset
	GET  /metrics            Prometheus exposition
	GET  /metrics/json       JSON metrics summary

Tool failures (bad expressions, missing parameters) are reported with 200
and success=false in the result body. Transport-level problems (malformed
JSON, unknown tool IDs) use 4xx statuses.
*/
package http
