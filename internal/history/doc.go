// Package history persists completed labeling runs to a SQLite database
// so past runs over a sample set can be compared later.
//
// Persistence is strictly post-run: the pipeline never reads from or
// writes to the database while workers are active, so it adds no
// concurrency concerns to the extraction path. Failure to record history
// is reported but never fails the run.
package history
