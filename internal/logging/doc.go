// Package logging wraps Zap with context-aware, caller-configured loggers.
//
// Loggers are constructed explicitly and passed down through the ingestion
// pipeline; nothing in this package mutates process-wide state. The upstream
// fetch libraries receive the logger they are given, not an ambient one.
//
// Output goes to stderr (JSON or console encoding) so digests on stdout stay
// clean, and optionally to an OpenTelemetry log provider via the otelzap
// bridge. Fields whose names look secret-bearing are masked by a redacting
// encoder before they reach either sink.
package logging
