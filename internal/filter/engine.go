package filter

import (
	"aoedash/internal/dataset"
)

type constraint struct {
	idx    int
	accept map[string]struct{}
}

// Apply recomputes every row's Selected flag from spec. Rows start selected
// and each non-empty column clears the rows whose value it does not accept,
// so the result is the AND of all active columns regardless of the order in
// which they were chosen. Previous selections never leak into the result.
//
// Every column the spec names must exist in the dataset schema, empty or
// not. The check runs before any row is touched.
func Apply(ds *dataset.Dataset, spec Spec) error {
	for _, col := range spec.Columns() {
		if !ds.HasColumn(col) {
			return &MissingColumnError{Column: col}
		}
	}

	active := spec.Active()
	if len(active) == 0 {
		ds.SelectAll()
		return nil
	}
	constraints := make([]constraint, 0, len(active))
	for _, col := range active {
		idx, _ := ds.ColumnIndex(col)
		constraints = append(constraints, constraint{idx: idx, accept: toSet(spec[col])})
	}

	for i := range ds.Rows {
		row := &ds.Rows[i]
		row.Selected = true
		for _, c := range constraints {
			if _, ok := c.accept[row.Values[c.idx]]; !ok {
				row.Selected = false
				break
			}
		}
	}
	return nil
}
