// Package logging assembles structured slog loggers and formatting helpers used
// across artistdb.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// standard field names. Context helpers tag lines with the current run ID, and
// DiagnosticAttrs turns resolution diagnostics into consistent attributes.
// NewNop provides a silent logger for tests and optional wiring.
package logging
