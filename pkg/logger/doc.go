// Package logger provides the structured logging interface used across the
// crawler.
//
// It wraps zerolog. The default output is a console writer on stderr so
// command results on stdout stay machine readable; a log file can be
// configured instead.
//
//	log, err := logger.New(&config.LoggingConfig{Level: "debug"})
//	log.WithField("code", "BxYz").Warn("media fetch failed")
//	log.InfoWithFields("batch settled", map[string]interface{}{
//	    "requested": 12,
//	    "resolved":  11,
//	})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard
// them.
package logger
