package filter

import "sort"

type pageState struct {
	columns []string
	values  map[string][]string
}

// Registry holds the committed filter values for every page namespace.
// It is owned by one session and is not safe for concurrent use.
type Registry struct {
	pages      map[string]*pageState
	generation uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pages: make(map[string]*pageState)}
}

// Initialize makes sure every column has an entry for page. Existing entries
// are left alone, so it is safe to call on every render pass.
func (r *Registry) Initialize(page string, columns []string) {
	ps, ok := r.pages[page]
	if !ok {
		ps = &pageState{values: make(map[string][]string, len(columns))}
		r.pages[page] = ps
	}
	for _, col := range columns {
		if _, exists := ps.values[col]; exists {
			continue
		}
		ps.columns = append(ps.columns, col)
		ps.values[col] = []string{}
	}
}

// Pages returns the initialized page namespaces, sorted.
func (r *Registry) Pages() []string {
	out := make([]string, 0, len(r.pages))
	for p := range r.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Columns returns the recognized columns of page in registration order.
func (r *Registry) Columns(page string) []string {
	ps, ok := r.pages[page]
	if !ok {
		return nil
	}
	return cloneValues(ps.columns)
}

// Recognizes reports whether column was initialized for page.
func (r *Registry) Recognizes(page, column string) bool {
	ps, ok := r.pages[page]
	if !ok {
		return false
	}
	_, ok = ps.values[column]
	return ok
}

// Get returns a copy of the committed values for a column.
func (r *Registry) Get(page, column string) ([]string, error) {
	if !r.Recognizes(page, column) {
		return nil, &MissingColumnError{Page: page, Column: column}
	}
	return cloneValues(r.pages[page].values[column]), nil
}

// Set commits values for a column. The column must have been initialized.
func (r *Registry) Set(page, column string, values []string) error {
	if !r.Recognizes(page, column) {
		return &MissingColumnError{Page: page, Column: column}
	}
	r.pages[page].values[column] = cloneValues(values)
	return nil
}

// Spec returns a snapshot of the committed filters for page.
func (r *Registry) Spec(page string) Spec {
	ps, ok := r.pages[page]
	if !ok {
		return Spec{}
	}
	out := make(Spec, len(ps.values))
	for c, v := range ps.values {
		out[c] = cloneValues(v)
	}
	return out
}

// Reset clears every column on every page and advances the generation.
func (r *Registry) Reset() {
	for _, ps := range r.pages {
		for c := range ps.values {
			ps.values[c] = []string{}
		}
	}
	r.generation++
}

// Generation counts resets. Widgets compare it against the value they last
// saw to know when to drop their local selection; nothing else reads it.
func (r *Registry) Generation() uint64 {
	return r.generation
}
