package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/avlabel/internal/model"
)

// MarkdownWriter outputs the summary table in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation; it gives us type-safe tables without hand-rolled pipes and
// escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs a Markdown document with the table and a row count.
func (w *MarkdownWriter) Write(table *model.Table) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Label Summary")
	md.PlainText("")
	md.PlainText("Records labeled: " + strconv.Itoa(len(table.Rows)))
	md.PlainText("")

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, table.RowValues(row))
	}
	md.Table(markdown.TableSet{
		Header: table.Header(),
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}
