// Package export turns feature records into XLSX workbooks. Every export
// call builds a fresh workbook and returns its bytes; nothing is shared
// between calls, so a failed export never disturbs an existing output file.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"imgsheet/internal/common"
	"imgsheet/internal/extract"
)

const (
	featureSheet = "Image Features"
	dataSheet    = "Image Data"
	summarySheet = "Summary"

	headerFillColor = "4472C4"
	maxColumnWidth  = 50
)

// Exporter writes feature records as XLSX bytes. Stateless per call.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// SummaryOptions configures the derived summary sheet.
type SummaryOptions struct {
	MeanMode MeanMode
}

// ExportRecord writes a single record as Feature/Value pairs, one row per
// key in the record's insertion order.
func (e *Exporter) ExportRecord(rec *extract.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer closeFile(f, e.logger)

	if err := f.SetSheetName("Sheet1", featureSheet); err != nil {
		return nil, err
	}
	if err := setRow(f, featureSheet, 1, []any{"Feature", "Value"}); err != nil {
		return nil, err
	}
	for i, key := range rec.Keys() {
		v, _ := rec.Get(key)
		if err := setRow(f, featureSheet, i+2, []any{key, v}); err != nil {
			return nil, err
		}
	}
	if err := e.finishSheet(f, featureSheet, 2); err != nil {
		return nil, err
	}
	return e.writeBytes(f, 1)
}

// ExportRecords reconciles the records into one rectangular data sheet.
// Returns common.ErrEmptyInput (and no bytes) for an empty list.
func (e *Exporter) ExportRecords(records []*extract.Record) ([]byte, error) {
	tab, err := BuildTable(records)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer closeFile(f, e.logger)

	if err := f.SetSheetName("Sheet1", featureSheet); err != nil {
		return nil, err
	}
	if err := writeTable(f, featureSheet, tab); err != nil {
		return nil, err
	}
	if err := e.finishSheet(f, featureSheet, len(tab.Columns)); err != nil {
		return nil, err
	}
	return e.writeBytes(f, len(tab.Rows))
}

// ExportWithSummary writes the data sheet plus a derived summary sheet,
// inserted as the first sheet of the workbook.
func (e *Exporter) ExportWithSummary(records []*extract.Record, opts SummaryOptions) ([]byte, error) {
	tab, err := BuildTable(records)
	if err != nil {
		return nil, err
	}
	sum, err := Summarize(records, opts.MeanMode)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer closeFile(f, e.logger)

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return nil, err
	}
	if err := writeTable(f, dataSheet, tab); err != nil {
		return nil, err
	}
	if err := e.finishSheet(f, dataSheet, len(tab.Columns)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	rows := [][]any{
		{"Summary", ""},
		{"Total Images Processed", sum.TotalImages},
	}
	if sum.AvgBrightness != nil {
		rows = append(rows, []any{"Average Brightness", *sum.AvgBrightness})
	}
	if sum.AvgWidth != nil && sum.AvgHeight != nil {
		rows = append(rows,
			[]any{"Average Width", *sum.AvgWidth},
			[]any{"Average Height", *sum.AvgHeight},
		)
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}
	if err := e.finishSheet(f, summarySheet, 2); err != nil {
		return nil, err
	}
	// Summary goes first in the workbook.
	if err := f.MoveSheet(summarySheet, dataSheet); err != nil {
		return nil, err
	}
	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	return e.writeBytes(f, len(tab.Rows))
}

func (e *Exporter) writeBytes(f *excelize.File, rows int) ([]byte, error) {
	start := time.Now()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	e.logger.Debug("export.xlsx.ok",
		"rows", rows,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// finishSheet applies the cosmetic pass: styled header row and auto-sized
// column widths. It never changes data values.
func (e *Exporter) finishSheet(f *excelize.File, sheet string, ncols int) error {
	if err := styleHeader(f, sheet, ncols); err != nil {
		return err
	}
	return autoSizeColumns(f, sheet)
}

func writeTable(f *excelize.File, sheet string, tab Table) error {
	header := make([]any, len(tab.Columns))
	for i, c := range tab.Columns {
		header[i] = c
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range tab.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, ncols int) error {
	if ncols < 1 {
		return nil
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}
	start, err := excelize.CoordinatesToCellName(1, 1)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(ncols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, styleID)
}

// autoSizeColumns sets each column's width to its longest rendered value
// plus padding, capped at maxColumnWidth character widths.
func autoSizeColumns(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	widths := map[int]int{}
	for _, row := range rows {
		for ci, cell := range row {
			if len(cell) > widths[ci] {
				widths[ci] = len(cell)
			}
		}
	}
	for ci, w := range widths {
		name, err := excelize.ColumnNumberToName(ci + 1)
		if err != nil {
			return err
		}
		width := w + 2
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func closeFile(f *excelize.File, logger *slog.Logger) {
	if err := f.Close(); err != nil {
		logger.Error("close workbook", "error", err)
	}
}

// EnsureNotEmpty is a cheap pre-check for callers that want to fail before
// any extraction work happens.
func EnsureNotEmpty(records []*extract.Record) error {
	if len(records) == 0 {
		return common.ErrEmptyInput
	}
	return nil
}
