// Package logger builds the kernel's log/slog loggers.
//
// [New] returns a JSON logger for servers or a text logger for the CLI.
// [ContextExtractor] values attach request-scoped attributes such as the
// request ID or the matched route pattern to every record:
//
//	log := logger.New(
//	    logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	    logger.WithExtractors(
//	        middlewares.RequestIDExtractor(),
//	        logger.StringExtractor("route", kernel.RoutePattern),
//	    ),
//	)
//
// [NewWithSentry] additionally forwards warnings and errors to Sentry. It
// falls back to local output when the DSN is empty.
//
// [NewNope] discards everything and is the default wherever a logger is
// optional.
package logger
