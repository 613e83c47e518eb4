package dashboard

import (
	"time"

	"aoedash/internal/dataset"
	"aoedash/internal/filter"
	"aoedash/internal/pages"
	"aoedash/internal/session"
)

// View is the settled result of rendering one page.
type View struct {
	Page   *pages.Page
	Source string

	// Dataset is nil when the fetch failed.
	Dataset   *dataset.Dataset
	FetchedAt time.Time
	Stale     bool
	FetchErr  error

	Options   map[string][]string
	Committed filter.Spec
	Table     *pages.Table
	Series    []pages.Point

	Generation uint64
	Phase      session.Phase
	Passes     int
}

// LastUpdated is the text of the "Last Updated" card.
func (v *View) LastUpdated() string {
	if v.FetchedAt.IsZero() {
		return "Last Updated: never"
	}
	s := "Last Updated: " + v.FetchedAt.Local().Format("2006-01-02 15:04")
	if v.Stale {
		s += " (cached)"
	}
	return s
}

// Backend summarizes the raw state behind a page.
type Backend struct {
	Source     string
	Rows       int
	Selected   int
	Columns    []string
	Committed  filter.Spec
	Phase      session.Phase
	Generation uint64
	Passes     int
}

// Backend returns the raw dataset and session state behind the view.
func (v *View) Backend() Backend {
	b := Backend{
		Source:     v.Source,
		Committed:  v.Committed,
		Phase:      v.Phase,
		Generation: v.Generation,
		Passes:     v.Passes,
	}
	if v.Dataset != nil {
		b.Rows = v.Dataset.Len()
		b.Selected = v.Dataset.SelectedCount()
		b.Columns = v.Dataset.Columns()
	}
	return b
}
