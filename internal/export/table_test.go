package export

import (
	"errors"
	"testing"

	"imgsheet/internal/common"
	"imgsheet/internal/extract"
)

func makeRecord(pairs ...any) *extract.Record {
	rec := extract.NewRecord()
	for i := 0; i < len(pairs); i += 2 {
		rec.Set(pairs[i].(string), pairs[i+1])
	}
	return rec
}

func TestBuildTable(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50, "avg_brightness", 10.0),
		makeRecord("width", 200, "height", 100),
	}

	tab, err := BuildTable(records)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	wantCols := []string{"avg_brightness", "height", "width"}
	if len(tab.Columns) != len(wantCols) {
		t.Fatalf("Expected %d columns, got %v", len(wantCols), tab.Columns)
	}
	for i := range wantCols {
		if tab.Columns[i] != wantCols[i] {
			t.Errorf("Columns[%d] = %q, want %q", i, tab.Columns[i], wantCols[i])
		}
	}

	wantRows := [][]any{
		{10.0, 50, 100},
		{"", 100, 200},
	}
	if len(tab.Rows) != len(wantRows) {
		t.Fatalf("Expected %d rows, got %d", len(wantRows), len(tab.Rows))
	}
	for i, want := range wantRows {
		for j := range want {
			if tab.Rows[i][j] != want[j] {
				t.Errorf("Rows[%d][%d] = %v, want %v", i, j, tab.Rows[i][j], want[j])
			}
		}
	}
}

func TestBuildTable_Empty(t *testing.T) {
	_, err := BuildTable(nil)
	if !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestSummarize_MeanModes(t *testing.T) {
	records := []*extract.Record{
		makeRecord("width", 100, "height", 50, "avg_brightness", 10.0),
		makeRecord("width", 200, "height", 100),
	}

	sum, err := Summarize(records, MeanZeroFill)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", sum.TotalImages)
	}
	if sum.AvgBrightness == nil || *sum.AvgBrightness != 5.0 {
		t.Errorf("zero-fill AvgBrightness = %v, want 5.0", sum.AvgBrightness)
	}
	if sum.AvgWidth == nil || *sum.AvgWidth != 150.0 {
		t.Errorf("AvgWidth = %v, want 150.0", sum.AvgWidth)
	}
	if sum.AvgHeight == nil || *sum.AvgHeight != 75.0 {
		t.Errorf("AvgHeight = %v, want 75.0", sum.AvgHeight)
	}

	sum, err = Summarize(records, MeanExcludeMissing)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.AvgBrightness == nil || *sum.AvgBrightness != 10.0 {
		t.Errorf("exclude-missing AvgBrightness = %v, want 10.0", sum.AvgBrightness)
	}
}

func TestSummarize_SkipsAbsentColumns(t *testing.T) {
	records := []*extract.Record{
		makeRecord("image_path", "a.png"),
		makeRecord("image_path", "b.png"),
	}

	sum, err := Summarize(records, MeanZeroFill)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.TotalImages != 2 {
		t.Errorf("TotalImages = %d, want 2", sum.TotalImages)
	}
	if sum.AvgBrightness != nil {
		t.Errorf("Expected brightness skipped, got %v", *sum.AvgBrightness)
	}
	if sum.AvgWidth != nil || sum.AvgHeight != nil {
		t.Error("Expected dimension means skipped")
	}
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil, MeanZeroFill)
	if !errors.Is(err, common.ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestSummarize_Rounding(t *testing.T) {
	records := []*extract.Record{
		makeRecord("avg_brightness", 10.0),
		makeRecord("avg_brightness", 10.0),
		makeRecord("avg_brightness", 11.0),
	}
	sum, err := Summarize(records, MeanZeroFill)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.AvgBrightness == nil || *sum.AvgBrightness != 10.33 {
		t.Errorf("AvgBrightness = %v, want 10.33", sum.AvgBrightness)
	}
}

func TestParseMeanMode(t *testing.T) {
	cases := []struct {
		in      string
		want    MeanMode
		wantErr bool
	}{
		{"", MeanZeroFill, false},
		{"zero-fill", MeanZeroFill, false},
		{"exclude-missing", MeanExcludeMissing, false},
		{"bogus", MeanZeroFill, true},
	}
	for _, tc := range cases {
		got, err := ParseMeanMode(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("ParseMeanMode(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMeanMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
