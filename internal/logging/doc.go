// Package logging builds the slog loggers used by the provisioner and CLI.
//
// Two output formats are supported: a console handler that renders
// severity-tagged, key=value lines for operators watching container logs, and
// a JSON handler for log collectors. Output can fan out to stdout/stderr and
// a log file under the configured log directory.
package logging
