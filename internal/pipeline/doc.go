// Package pipeline implements the concurrent extraction pipeline:
// discovery of record files, the per-file processing task, and the
// parallel dispatcher that fans tasks out across a bounded worker pool.
//
// Failure isolation is per file and per field. A file that cannot be read
// or parsed is logged and omitted from the results; a field that cannot be
// extracted leaves only its own cell empty; a task that panics is recovered
// at the dispatch boundary and yields a row with all requested fields
// empty. Nothing a single file does can abort the run.
//
// Results are collected in completion order, which is non-deterministic;
// deterministic ordering is established once, by the report assembler's
// final sort.
package pipeline
