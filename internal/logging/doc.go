// Package logging constructs the process-wide slog logger with console and
// JSON output formats.
package logging
