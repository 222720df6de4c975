// Package errlog provides the per-run error log: an append-only,
// file-backed structured logger shared by every pipeline component,
// built on top of the standard slog package.
//
// The sink is opened once at run start, written to by any worker on any
// per-file failure, and closed at run end. It is injected explicitly into
// each component rather than exposed as a global, and a logged error never
// aborts the run. Concurrent writers are safe: slog handlers serialize
// individual records, so log lines never interleave.
package errlog
