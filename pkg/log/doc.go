// Package log provides structured logging for IES components.
//
// Loggers are constructed explicitly and passed by dependency injection;
// there is no global default. A logger carries a level, a set of base
// fields, a formatter (text or JSON), and one or more outputs.
//
//	logger := log.NewLogger(log.WithLevel(log.InfoLevel))
//	logger = logger.With(log.Component("ingest"))
//	logger.Info("batch persisted", log.Int("records", n))
//
// ApplyConfig builds a logger from a Config (typically filled from
// IES_LOG_LEVEL / IES_LOG_FORMAT), and RedirectStdLog routes standard
// library log output (Pebble uses it) through a Logger.
package log
