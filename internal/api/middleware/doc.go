// Package middleware holds the gin middleware stack of the HTTP API: CORS,
// per-client rate limiting, request IDs, access logging and gzip.
package middleware
