// Package logging assembles structured slog loggers and formatting helpers used
// across mp4press.
//
// It owns the console and JSON handlers, centralizes level and output plumbing
// (stdout plus a size-rotated log file), and exposes attribute helpers so the
// router and pipeline tag every line with the file being processed, the
// decision taken, and the event type. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
