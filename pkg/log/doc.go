// Package log provides the logging abstraction used by trafficd components.
//
// Components depend on the [Logger] interface only. A zerolog-backed
// implementation is provided for the CLI and a no-op logger for embedding
// and tests.
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	x, err := intersection.New(cfg, intersection.WithLogger(logger))
//
// Implement [Logger] to route controller diagnostics into an existing
// logging stack. [Logger.With] attaches fields such as [Component] to every
// entry of a child logger.
package log
