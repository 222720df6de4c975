// Package model defines the core data structures shared across avlabel:
// the set of extractable record fields, the per-file extraction result,
// the sorted output table, and the run summary.
//
// These types are pure data with no I/O. Components communicate by passing
// them explicitly rather than through shared state, which keeps the
// concurrent pipeline easy to reason about.
package model
