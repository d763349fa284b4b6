// Package logging assembles structured slog loggers and formatting helpers used
// across StarBank.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context helpers so scan code can tag every log line with the scan
// correlation id. A no-op logger is provided for tests and wiring code that
// cannot fail.
package logging
