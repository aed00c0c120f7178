package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"imgsheet/internal/common"
	"imgsheet/internal/extract"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportRecord(t *testing.T) {
	rec := makeRecord("image_path", "a.png", "width", 640, "extracted_text", "hi")
	e := NewExporter(nil)

	data, err := e.ExportRecord(rec)
	if err != nil {
		t.Fatalf("ExportRecord failed: %v", err)
	}

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Image Features")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Feature", "Value"},
		{"image_path", "a.png"},
		{"width", "640"},
		{"extracted_text", "hi"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d rows, got %d: %v", len(want), len(rows), rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("rows[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestExportRecords(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50, "avg_brightness", 10.0),
		makeRecord("width", 200, "height", 100),
	}
	e := NewExporter(nil)

	data, err := e.ExportRecords(records)
	if err != nil {
		t.Fatalf("ExportRecords failed: %v", err)
	}

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Image Features")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 data rows, got %d", len(rows))
	}
	header := rows[0]
	wantHeader := []string{"avg_brightness", "height", "width"}
	for i := range wantHeader {
		if header[i] != wantHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], wantHeader[i])
		}
	}
	if rows[1][0] != "10" || rows[1][1] != "50" || rows[1][2] != "100" {
		t.Errorf("Unexpected first data row: %v", rows[1])
	}
	// Missing cells are written as "" and excelize trims the trailing blank.
	if rows[2][len(rows[2])-2] != "100" || rows[2][len(rows[2])-1] != "200" {
		t.Errorf("Unexpected second data row: %v", rows[2])
	}
}

func TestExportRecords_Idempotent(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50),
	}
	e := NewExporter(nil)

	first, err := e.ExportRecords(records)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	second, err := e.ExportRecords(records)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}

	r1, err := openWorkbook(t, first).GetRows("Image Features")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	r2, err := openWorkbook(t, second).GetRows("Image Features")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(r1) != len(r2) {
		t.Fatalf("Row counts differ: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		for j := range r1[i] {
			if r1[i][j] != r2[i][j] {
				t.Errorf("Cell [%d][%d] differs: %q vs %q", i, j, r1[i][j], r2[i][j])
			}
		}
	}
}

func TestExportRecords_Empty(t *testing.T) {
	e := NewExporter(nil)
	data, err := e.ExportRecords(nil)
	if !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if data != nil {
		t.Error("Expected no bytes on empty input")
	}
}

func TestExportWithSummary(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50, "avg_brightness", 10.0),
		makeRecord("width", 200, "height", 100),
	}
	e := NewExporter(nil)

	data, err := e.ExportWithSummary(records, SummaryOptions{MeanMode: MeanZeroFill})
	if err != nil {
		t.Fatalf("ExportWithSummary failed: %v", err)
	}

	f := openWorkbook(t, data)
	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("Expected 2 sheets, got %v", sheets)
	}
	if sheets[0] != "Summary" || sheets[1] != "Image Data" {
		t.Errorf("Expected Summary first, got %v", sheets)
	}

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	want := [][]string{
		{"Summary"},
		{"Total Images Processed", "2"},
		{"Average Brightness", "5"},
		{"Average Width", "150"},
		{"Average Height", "75"},
	}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d summary rows, got %d: %v", len(want), len(rows), rows)
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("summary[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}

	dataRows, err := f.GetRows("Image Data")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(dataRows) != 3 {
		t.Errorf("Expected header plus 2 data rows, got %d", len(dataRows))
	}
}

func TestExportWithSummary_NoBrightness(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50),
	}
	e := NewExporter(nil)

	data, err := e.ExportWithSummary(records, SummaryOptions{})
	if err != nil {
		t.Fatalf("ExportWithSummary failed: %v", err)
	}

	f := openWorkbook(t, data)
	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Average Brightness" {
			t.Error("Expected brightness row omitted when column absent")
		}
	}
}

func TestEnsureNotEmpty(t *testing.T) {
	if err := EnsureNotEmpty(nil); !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if err := EnsureNotEmpty([]*extract.Record{makeRecord("a", 1)}); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
