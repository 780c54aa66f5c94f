// Package server assembles the analysis server: configuration, logging,
// metrics, tracing, the preset library, the calculus provider, middleware
// and routes.
package server
