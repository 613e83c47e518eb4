// Package dataset holds the flat snapshot tables that dashboard pages filter
// and aggregate. Every row carries a Selected flag; it is the only field the
// filter engine mutates.
package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrDuplicateColumn is returned when a header names the same column twice.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrRowWidth is returned when a row does not match the schema width.
	ErrRowWidth = errors.New("row width does not match schema")
	// ErrUnknownColumn is returned by accessors asked for a column outside the schema.
	ErrUnknownColumn = errors.New("unknown column")
)

// Row is one fact record. Values are positional and follow the dataset schema.
type Row struct {
	Values   []string
	Selected bool
}

// Dataset is an ordered sequence of rows with a fixed column schema.
// It is owned by a single page and mutated in place on every render cycle.
type Dataset struct {
	// Source is the storage path the dataset was decoded from.
	Source string
	// FetchedAt records when the snapshot was downloaded.
	FetchedAt time.Time

	Rows []Row

	columns []string
	index   map[string]int
}

// New creates an empty dataset with the given schema.
func New(source string, columns []string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		index[name] = i
		cols[i] = name
	}
	return &Dataset{
		Source:  source,
		columns: cols,
		index:   index,
	}, nil
}

// Columns returns a copy of the schema in file order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the schema contains name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnIndex returns the position of name in the schema.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// Append adds a row. New rows start selected.
func (d *Dataset) Append(values ...string) error {
	if len(values) != len(d.columns) {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(values), len(d.columns))
	}
	row := make([]string, len(values))
	copy(row, values)
	d.Rows = append(d.Rows, Row{Values: row, Selected: true})
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// SelectAll marks every row selected.
func (d *Dataset) SelectAll() {
	for i := range d.Rows {
		d.Rows[i].Selected = true
	}
}

// SelectedCount returns how many rows are currently selected.
func (d *Dataset) SelectedCount() int {
	n := 0
	for _, r := range d.Rows {
		if r.Selected {
			n++
		}
	}
	return n
}

// SelectedRows returns the selected rows in dataset order. The returned rows
// share their Values slices with the dataset.
func (d *Dataset) SelectedRows() []Row {
	out := make([]Row, 0, len(d.Rows))
	for _, r := range d.Rows {
		if r.Selected {
			out = append(out, r)
		}
	}
	return out
}

// Getter returns an accessor for a single column.
func (d *Dataset) Getter(name string) (func(Row) string, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return func(r Row) string { return r.Values[i] }, nil
}

// Distinct returns the sorted distinct values of a column across all rows,
// selected or not.
func (d *Dataset) Distinct(name string) ([]string, error) {
	get, err := d.Getter(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, r := range d.Rows {
		seen[get(r)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Number parses a measure cell. Empty cells count as zero.
func Number(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
