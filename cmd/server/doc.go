// Package main is the entry point for the grafy analysis server.
//
// Configuration comes from the environment (see internal/infrastructure/config)
// and the flags below, which take precedence.
//
// Usage:
//
//	# Defaults: 0.0.0.0:8000, built-in presets only
//	./server
//
//	# Extra presets, debug logs
//	./server -presets ./presets -dev
//
//	./server -port 9000 -max-resolution 200 -no-rate-limit
//
// SIGINT and SIGTERM drain in-flight requests before exiting.
package main
