// Package filter implements per-page categorical filter state and the
// selection engine that projects it onto a dataset.
package filter

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingColumn marks a filter that names a column the page or dataset
// does not know about. It indicates stale page wiring, not bad user input.
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError carries the offending page and column.
type MissingColumnError struct {
	Page   string
	Column string
}

func (e *MissingColumnError) Error() string {
	if e.Page == "" {
		return fmt.Sprintf("%v: %q", ErrMissingColumn, e.Column)
	}
	return fmt.Sprintf("%v: %q on page %q", ErrMissingColumn, e.Column, e.Page)
}

// Is lets errors.Is match ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// Spec maps a column name to the values the user chose to keep, in the
// order they were chosen. An empty sequence means no constraint.
type Spec map[string][]string

// Columns returns every column named by the spec, sorted.
func (s Spec) Columns() []string {
	cols := make([]string, 0, len(s))
	for c := range s {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Active returns the sorted columns that carry at least one value.
func (s Spec) Active() []string {
	cols := make([]string, 0, len(s))
	for c, v := range s {
		if len(v) > 0 {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	return cols
}

// Clone deep-copies the spec.
func (s Spec) Clone() Spec {
	out := make(Spec, len(s))
	for c, v := range s {
		out[c] = cloneValues(v)
	}
	return out
}

// SameSet reports whether a and b hold the same values, ignoring order and
// repetition.
func SameSet(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func cloneValues(v []string) []string {
	out := make([]string, len(v))
	copy(out, v)
	return out
}
