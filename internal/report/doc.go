// Package report serializes the assembled output table.
//
// The CSV writer produces the primary summary file; Markdown and XLSX
// writers render the same table for sharing and spreadsheet use. All
// writers consume the already-sorted model.Table and perform no validation
// of their own.
package report
