// Package logtail reads the tail of duetmon's own log file.
//
// The status panel owns the terminal, so warnings logged while it runs only
// reach the log file. The panel calls Warnings on every refresh to show the
// most recent WARN and ERROR records beneath the printer status.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded however large the file grows. Parse understands both slog
// handlers duetmon can write:
//
//	time=2026-10-16T14:03:07Z level=WARN msg="printer poll failed" error="..."
//	{"time":"2026-10-16T14:03:07Z","level":"WARN","msg":"printer poll failed","error":"..."}
//
// Lines in any other shape are skipped.
package logtail
