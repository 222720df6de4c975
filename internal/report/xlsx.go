package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/avlabel/internal/model"
)

// xlsxSheet is the workbook sheet holding the summary table.
const xlsxSheet = "Labels"

// XLSXWriter outputs the summary table as an XLSX workbook for
// spreadsheet-based triage of labeled sample sets.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the table into a single-sheet workbook.
func (w *XLSXWriter) Write(table *model.Table) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory workbook, nothing to release on disk

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := w.setRow(f, 1, table.Header()); err != nil {
		return 0, err
	}
	for i, row := range table.Rows {
		if err := w.setRow(f, i+2, table.RowValues(row)); err != nil {
			return 0, err
		}
	}

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("failed to write workbook: %w", err)
	}
	return int(n), nil
}

// setRow writes one row of cells at the given 1-based row number.
func (w *XLSXWriter) setRow(f *excelize.File, rowNum int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}
