package model

import (
	"sort"
	"strings"
	"time"
)

// ExtractionResult holds the values extracted from a single record file.
// A missing value for a field is not an error; it simply renders as an
// empty cell in the output table.
//
// A result is produced by exactly one worker and is not mutated after the
// worker hands it to the dispatcher, so no locking is required.
type ExtractionResult struct {
	// FileID is the record's file name without the ".json" extension.
	// It is the primary sort key for the output table.
	FileID string

	// Path is the record's source path. Files in different directories
	// can share a FileID, so the path breaks sort ties deterministically.
	Path string

	// values maps a field to its extracted value. Absent keys mean the
	// field was not found (or enrichment failed) for this record.
	values map[Field]string
}

// NewExtractionResult creates an empty result for the given file identifier.
func NewExtractionResult(fileID string) *ExtractionResult {
	return &ExtractionResult{
		FileID: fileID,
		values: make(map[Field]string),
	}
}

// Set records the extracted value for a field.
func (r *ExtractionResult) Set(f Field, value string) {
	r.values[f] = value
}

// Value returns the extracted value for a field and whether it was present.
func (r *ExtractionResult) Value(f Field) (string, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Table is the sorted, immutable output of a run: one row per record file
// that parsed successfully, plus the active column set.
type Table struct {
	// Fields are the active optional fields in canonical column order.
	Fields []Field

	// Rows are the extraction results sorted lexicographically by FileID.
	Rows []*ExtractionResult
}

// NewTable assembles a table from the unordered result collection.
// Rows are sorted lexicographically by file identifier, with the source
// path as tie-breaker, so the output is deterministic regardless of task
// completion order even when files in different directories share a name.
func NewTable(results []*ExtractionResult, fields FieldSet) *Table {
	rows := make([]*ExtractionResult, len(results))
	copy(rows, results)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FileID != rows[j].FileID {
			return strings.Compare(rows[i].FileID, rows[j].FileID) < 0
		}
		return strings.Compare(rows[i].Path, rows[j].Path) < 0
	})
	return &Table{
		Fields: fields.Active(),
		Rows:   rows,
	}
}

// Header returns the column names: file_name followed by the active fields.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.Fields)+1)
	header = append(header, "file_name")
	for _, f := range t.Fields {
		header = append(header, f.Column())
	}
	return header
}

// RowValues renders one row in header order. Absent fields render as the
// empty string.
func (t *Table) RowValues(row *ExtractionResult) []string {
	values := make([]string, 0, len(t.Fields)+1)
	values = append(values, row.FileID)
	for _, f := range t.Fields {
		v, _ := row.Value(f)
		values = append(values, v)
	}
	return values
}

// RunSummary describes a completed labeling run for the final console
// output and the run-history database.
type RunSummary struct {
	// InputDir is the scanned report directory.
	InputDir string

	// OutputPath is where the CSV table was written.
	OutputPath string

	// LogPath is where the error log was written.
	LogPath string

	// FilesDiscovered is the number of .json files found under InputDir.
	FilesDiscovered int

	// RowsWritten is the number of rows in the output table.
	RowsWritten int

	// ErrorCount is the number of entries appended to the error log.
	ErrorCount int

	// StartedAt is when processing began.
	StartedAt time.Time

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}
