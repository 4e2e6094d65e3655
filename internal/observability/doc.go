// Package observability sets up structured logging and tracing.
//
// NewLogger builds a log/slog logger writing to stderr and/or a log file,
// tagging every record with a per-process session id and replacing the
// values of sensitive keys (password, authorization, token, ...) with
// "[REDACTED]".
//
// SetupTelemetry installs an OTLP/HTTP trace exporter when OTEL_ENABLED is
// set. The duet client opens a "duet.poll" span per poll cycle and a
// "duet.request" span per HTTP request; the JSON endpoint is traced with
// otelhttp.
package observability
