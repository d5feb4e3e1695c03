// Package logging assembles structured slog loggers and formatting helpers used
// across titledb.
//
// It owns the console and JSON handlers, routes terminal output and the
// per-run log file through a fan-out handler, and exposes context-aware
// helpers so crawl code automatically tags log lines with the run id,
// pipeline, and region. The package also provides a no-op logger for tests and
// wiring code that cannot fail, plus retention pruning for old run logs.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field names.
package logging
