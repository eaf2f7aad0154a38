// Package logger creates configured slog loggers with functional options.
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//		logger.WithAttr(slog.String("service", "wsgikit-server")),
//	)
package logger
