// Package logger provides structured logging for ytinfo.
//
// Features:
//   - Multiple log levels (TRACE, DEBUG, INFO, WARN, ERROR)
//   - Component-based filtering
//   - Multiple output formats (text, JSON, color)
//   - Thread-safe operations
//
// Usage:
//
//	log := logger.WithComponent(logger.ComponentResolver)
//	log.Debug("State transition", map[string]interface{}{
//		"video_id": "dQw4w9WgXcQ",
//		"state":    "embed_fetched",
//	})
//
//	config := logger.DefaultConfig()
//	config.Level = logger.DEBUG
//	config.Format = logger.FormatJSON
//	logger.SetGlobalLogger(logger.New(config))
//
// Components:
//   - ComponentApp: command line application
//   - ComponentClient: HTTP fetches and retries
//   - ComponentResolver: player config resolution
//   - ComponentFormat: format aggregation and ranking
//   - ComponentCipher: signature deciphering
//   - ComponentServer: HTTP server
package logger
