package export

import (
	"fmt"
	"math"
	"sort"

	"imgsheet/internal/common"
	"imgsheet/internal/extract"
)

// Table is the rectangular view over a set of heterogeneous feature records:
// Columns is the lexicographically sorted union of all record keys, and every
// row has exactly len(Columns) cells, with "" where the source record lacked
// the key.
type Table struct {
	Columns []string
	Rows    [][]any
}

// BuildTable reconciles the records' key sets into one rectangular table.
// Returns common.ErrEmptyInput for an empty record list.
func BuildTable(records []*extract.Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, common.ErrEmptyInput
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		for _, k := range r.Keys() {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(columns))
		for j, col := range columns {
			if v, ok := r.Get(col); ok {
				row[j] = v
			} else {
				row[j] = ""
			}
		}
		rows[i] = row
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// MeanMode selects the denominator policy for summary means over records
// that lack the averaged column.
type MeanMode int

const (
	// MeanZeroFill replicates the historical behavior: a missing value
	// contributes 0 to the numerator and the record still counts in the
	// denominator. Known data-quality caveat, kept as the default for
	// output compatibility.
	MeanZeroFill MeanMode = iota
	// MeanExcludeMissing drops records lacking the column from the
	// denominator.
	MeanExcludeMissing
)

// ParseMeanMode maps the config strings "zero-fill" and "exclude-missing".
func ParseMeanMode(s string) (MeanMode, error) {
	switch s {
	case "", "zero-fill":
		return MeanZeroFill, nil
	case "exclude-missing":
		return MeanExcludeMissing, nil
	default:
		return MeanZeroFill, fmt.Errorf("unknown summary mean mode %q", s)
	}
}

// Summary is the derived aggregate view over a batch of records. A nil mean
// means the column was absent from every record and the statistic was
// skipped, not zero-filled.
type Summary struct {
	TotalImages   int
	AvgBrightness *float64
	AvgWidth      *float64
	AvgHeight     *float64
}

// Summarize computes the summary aggregates. Brightness is reported iff
// avg_brightness appears in at least one record; width/height means are
// reported iff both columns appear, mirroring the data sheet's behavior.
func Summarize(records []*extract.Record, mode MeanMode) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, common.ErrEmptyInput
	}

	s := Summary{TotalImages: len(records)}
	if anyHas(records, extract.KeyAvgBrightness) {
		s.AvgBrightness = columnMean(records, extract.KeyAvgBrightness, mode)
	}
	if anyHas(records, extract.KeyWidth) && anyHas(records, extract.KeyHeight) {
		s.AvgWidth = columnMean(records, extract.KeyWidth, mode)
		s.AvgHeight = columnMean(records, extract.KeyHeight, mode)
	}
	return s, nil
}

func anyHas(records []*extract.Record, key string) bool {
	for _, r := range records {
		if _, ok := r.Get(key); ok {
			return true
		}
	}
	return false
}

func columnMean(records []*extract.Record, key string, mode MeanMode) *float64 {
	var sum float64
	n := 0
	for _, r := range records {
		v, ok := r.Get(key)
		if !ok {
			if mode == MeanZeroFill {
				n++
			}
			continue
		}
		sum += asFloat(v)
		n++
	}
	if n == 0 {
		return nil
	}
	mean := round2(sum / float64(n))
	return &mean
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
