// Package logging provides structured logging for the MQTT sender.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error, critical)
//   - A CRITICAL level above error for fatal conditions
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml or the
// MQTT_SENDER_LOG_* environment variables:
//
//	logging:
//	  level: "info"      # debug, info, warn, error, critical
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("starting service", "port", 8080)
//	logger.Critical("sender timed out while connecting", "timeout_seconds", 5)
//
// # Security
//
// Never log secrets, tokens, or passwords. Broker credentials are logged as
// the username only.
package logging
