package pages

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"aoedash/internal/dataset"
)

// Table is the displayed result of a page.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the position of name.
func (t *Table) Column(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// WriteCSV writes the table with a header line.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// CSV returns the table as a CSV string.
func (t *Table) CSV() string {
	var sb strings.Builder
	_ = t.WriteCSV(&sb)
	return sb.String()
}

// Point is one sample of a time series.
type Point struct {
	Date  time.Time
	Value float64
}

// renameSelected projects the selected rows, renaming columns found in
// names. The selection flag itself is never part of the output.
func renameSelected(ds *dataset.Dataset, names map[string]string) *Table {
	cols := ds.Columns()
	t := &Table{Columns: make([]string, len(cols))}
	for i, c := range cols {
		if n, ok := names[c]; ok {
			t.Columns[i] = n
		} else {
			t.Columns[i] = c
		}
	}
	for _, r := range ds.SelectedRows() {
		row := make([]string, len(r.Values))
		copy(row, r.Values)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// group is one aggregated bucket.
type group struct {
	keys []string
	sums []float64
}

// aggregate groups the selected rows by keys and sums measures. Groups come
// back sorted by their key tuple.
func aggregate(ds *dataset.Dataset, keys, measures []string) ([]group, error) {
	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		idx, ok := ds.ColumnIndex(k)
		if !ok {
			return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, k)
		}
		keyIdx[i] = idx
	}
	measIdx := make([]int, len(measures))
	for i, m := range measures {
		idx, ok := ds.ColumnIndex(m)
		if !ok {
			return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, m)
		}
		measIdx[i] = idx
	}

	byKey := make(map[string]*group)
	for n, r := range ds.Rows {
		if !r.Selected {
			continue
		}
		kv := make([]string, len(keyIdx))
		for i, idx := range keyIdx {
			kv[i] = r.Values[idx]
		}
		id := strings.Join(kv, "\x00")
		g, ok := byKey[id]
		if !ok {
			g = &group{keys: kv, sums: make([]float64, len(measIdx))}
			byKey[id] = g
		}
		for i, idx := range measIdx {
			v, err := dataset.Number(r.Values[idx])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", n+1, measures[i], err)
			}
			g.sums[i] += v
		}
	}

	out := make([]group, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].keys, out[j].keys
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out, nil
}

// winPercent is wins over matches as a percentage rounded to two decimals.
// It reports false when no matches were played.
func winPercent(wins, matches float64) (float64, bool) {
	if matches == 0 {
		return 0, false
	}
	return math.Round(wins/matches*100*100) / 100, true
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// parseDate accepts the date formats seen in snapshot exports.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
