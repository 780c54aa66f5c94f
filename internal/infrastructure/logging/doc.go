// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Subsystems log through named children (Component) so that entries carry
// a "logger" field such as "presets" or "stream".
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Component("presets").Warn("Skipping preset file", zap.Error(err))
package logging
