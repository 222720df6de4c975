// Package classify invokes an external AVClass-compatible classifier to
// enrich sample records with a malware family label.
//
// The classifier is treated as an opaque subprocess: the record is
// serialized to a uniquely named temporary file, the tool is invoked with
// that path, and the label is parsed from its standard output. Every step
// is fail-soft; any failure degrades to "no label" for the affected record
// and never propagates past this package. The temporary file is removed in
// all cases, and the invocation runs under a timeout so a hung classifier
// cannot stall a pipeline worker indefinitely.
package classify
