// Package record loads per-sample JSON report records and extracts
// individual fields from them.
//
// Loading distinguishes unreadable files (ErrRead) from malformed JSON
// (ErrParse) so callers can log the cause precisely. Field extraction is
// best-effort: a missing field is a normal optional result, never an error.
// Each supported field has its own typed accessor with a fixed lookup path,
// so the set of extractable fields is explicit in code.
package record
