// Package main provides the entry point for the avlabel CLI.
//
// avlabel scans a directory tree of per-sample JSON report records,
// extracts a configurable subset of fields from each record, optionally
// enriches each record with a malware family label from an external
// AVClass-compatible classifier, and writes a sorted CSV summary plus a
// structured error log.
//
// Usage:
//
//	avlabel label <report-dir> --family --size --md5
//
// See --help for all available options.
package main

// main is the entry point for avlabel.
func main() {
	Execute()
}
