package report

import (
	"io"
	"strings"

	"github.com/nao1215/avlabel/internal/model"
)

// CSVWriter outputs the summary table as comma-delimited UTF-8 text:
// one header line, then one line per row in the table's sorted order.
//
// Design decision: Cells are joined directly rather than going through
// encoding/csv because cell values are identifiers, hashes, sizes, and
// classifier tokens that never contain delimiters, and direct joining
// keeps the output byte-identical across runs with no quoting surprises.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header line followed by every row.
func (w *CSVWriter) Write(table *model.Table) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Join(table.Header(), ","))
	sb.WriteByte('\n')

	for _, row := range table.Rows {
		sb.WriteString(strings.Join(table.RowValues(row), ","))
		sb.WriteByte('\n')
	}

	return w.output.Write([]byte(sb.String()))
}
