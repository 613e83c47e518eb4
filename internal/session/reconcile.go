package session

import (
	"aoedash/internal/filter"
	"aoedash/internal/logging"
)

// Reconcile compares the current submission of page with the committed
// registry state. Columns are compared as sets, so the order in which values
// were picked never counts as a change. Differing columns are committed and
// true is returned to request a fresh render; otherwise nothing is written.
//
// A page that submitted nothing this pass is unchanged. A submission is
// always the page's whole state: a recognized column left out of it counts
// as empty, so a partial submission clears every column it omits.
// Submitting a column the page never initialized is a wiring defect and
// fails with filter.ErrMissingColumn before anything is committed.
func (c *Context) Reconcile(page string) (bool, error) {
	current, ok := c.Submission(page)
	if !ok {
		return false, nil
	}

	c.phases[page] = PhaseComparing
	for _, col := range current.Columns() {
		if !c.Registry.Recognizes(page, col) {
			c.phases[page] = PhaseIdle
			return false, &filter.MissingColumnError{Page: page, Column: col}
		}
	}

	var changed []string
	for _, col := range c.Registry.Columns(page) {
		committed, err := c.Registry.Get(page, col)
		if err != nil {
			c.phases[page] = PhaseIdle
			return false, err
		}
		if !filter.SameSet(current[col], committed) {
			changed = append(changed, col)
		}
	}

	if len(changed) == 0 {
		c.phases[page] = PhaseIdle
		return false, nil
	}

	c.phases[page] = PhaseCommitting
	for _, col := range changed {
		// Recognized above, so Set cannot fail.
		_ = c.Registry.Set(page, col, current[col])
	}
	c.phases[page] = PhaseReRenderRequested
	logging.Session("page %s committed %v", page, changed)
	return true, nil
}
