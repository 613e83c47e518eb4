// Package pages defines the dashboard's tabs: which filters each one shows
// and how it turns the selected rows of its dataset into a table.
package pages

import (
	"fmt"
	"sort"

	"aoedash/internal/dataset"
	"aoedash/internal/filter"
)

// WidgetKind is the kind of filter widget a column gets.
type WidgetKind int

const (
	// MultiSelect accepts zero or more values; none means no constraint.
	MultiSelect WidgetKind = iota
	// SingleSelect always holds exactly one value once options are known.
	SingleSelect
)

func (k WidgetKind) String() string {
	if k == SingleSelect {
		return "single"
	}
	return "multi"
}

// FilterDef describes one filter widget.
type FilterDef struct {
	Column      string
	Label       string
	Placeholder string
	Kind        WidgetKind
	// DefaultIndex is the option a SingleSelect starts on.
	DefaultIndex int
}

// Default returns the values the widget holds before the user touches it.
func (f FilterDef) Default(options []string) []string {
	if f.Kind != SingleSelect || len(options) == 0 {
		return nil
	}
	i := f.DefaultIndex
	if i < 0 || i >= len(options) {
		i = 0
	}
	return []string{options[i]}
}

// Page is one dashboard tab.
type Page struct {
	Namespace string
	Title     string // tab title
	Heading   string // shown above the table
	Info      string // markdown help
	Filters   []FilterDef

	// Build turns the selected rows into the displayed table.
	Build func(ds *dataset.Dataset) (*Table, error)
	// Series extracts a time series from the built table. Nil when the page
	// has no chart.
	Series func(t *Table) ([]Point, error)
	// ChartTitle titles the exported chart.
	ChartTitle string
}

// Columns returns the filter columns in widget order.
func (p *Page) Columns() []string {
	cols := make([]string, len(p.Filters))
	for i, f := range p.Filters {
		cols[i] = f.Column
	}
	return cols
}

// Filter returns the widget definition for column.
func (p *Page) Filter(column string) (FilterDef, bool) {
	for _, f := range p.Filters {
		if f.Column == column {
			return f, true
		}
	}
	return FilterDef{}, false
}

// HasChart reports whether the page exports a chart.
func (p *Page) HasChart() bool {
	return p.Series != nil
}

// Options returns, per filter column, the sorted distinct values over the
// whole dataset regardless of the current selection. A filter column the
// dataset lacks is a *filter.MissingColumnError.
func (p *Page) Options(ds *dataset.Dataset) (map[string][]string, error) {
	out := make(map[string][]string, len(p.Filters))
	for _, f := range p.Filters {
		if !ds.HasColumn(f.Column) {
			return nil, &filter.MissingColumnError{Page: p.Namespace, Column: f.Column}
		}
		vals, err := ds.Distinct(f.Column)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", p.Namespace, err)
		}
		out[f.Column] = vals
	}
	return out, nil
}

var registry = []*Page{
	Leaderboard(),
	CounterPicker(),
	Performance(),
}

// All returns every page in tab order.
func All() []*Page {
	out := make([]*Page, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a page by namespace.
func Lookup(namespace string) (*Page, bool) {
	for _, p := range registry {
		if p.Namespace == namespace {
			return p, true
		}
	}
	return nil, false
}

// Namespaces returns every page namespace, sorted.
func Namespaces() []string {
	out := make([]string, len(registry))
	for i, p := range registry {
		out[i] = p.Namespace
	}
	sort.Strings(out)
	return out
}
