// Package dashboard runs one page render the way every tab does it: make
// sure the page's filters exist, fetch its dataset, let the widgets submit,
// select rows from the committed filters, build the table, then reconcile.
// The session driver repeats the pass until nothing new was committed.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aoedash/internal/dataset"
	"aoedash/internal/filter"
	"aoedash/internal/logging"
	"aoedash/internal/pages"
	"aoedash/internal/session"
)

// Title is the heading shown on every tab.
const Title = "Age of Empires 2 Analysis"

// ErrUnknownPage is returned for a namespace no page owns.
var ErrUnknownPage = errors.New("unknown page")

// Fetcher supplies datasets by snapshot path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*dataset.Dataset, error)
}

// staleReporter is implemented by fetchers that can fall back to a local
// snapshot copy.
type staleReporter interface {
	Stale(path string) bool
}

// invalidator is implemented by memoizing fetchers.
type invalidator interface {
	Invalidate(path string)
}

// SubmitFunc plays the part of a page's widgets. It is called once per pass
// with the filter options and the registry generation, and returns the
// values the widgets currently hold. A nil SubmitFunc submits nothing.
type SubmitFunc func(page *pages.Page, options map[string][]string, generation uint64) filter.Spec

// Dashboard renders pages for one session.
type Dashboard struct {
	Session *session.Context

	fetcher Fetcher
	sources map[string]string
	driver  *session.Driver
}

// New creates a dashboard. sources maps page namespace to snapshot path.
func New(sc *session.Context, fetcher Fetcher, sources map[string]string, maxPasses int) *Dashboard {
	src := make(map[string]string, len(sources))
	for k, v := range sources {
		src[k] = v
	}
	return &Dashboard{
		Session: sc,
		fetcher: fetcher,
		sources: src,
		driver:  session.NewDriver(maxPasses),
	}
}

// Pages returns the pages that have a configured source, in tab order.
func (d *Dashboard) Pages() []*pages.Page {
	var out []*pages.Page
	for _, p := range pages.All() {
		if _, ok := d.sources[p.Namespace]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Source returns the snapshot path of a page.
func (d *Dashboard) Source(namespace string) (string, bool) {
	s, ok := d.sources[namespace]
	return s, ok
}

// Load fetches a page's dataset without rendering it, so slow downloads can
// happen off the UI goroutine.
func (d *Dashboard) Load(ctx context.Context, namespace string) error {
	source, ok := d.sources[namespace]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPage, namespace)
	}
	_, err := d.fetcher.Fetch(ctx, source)
	return err
}

// Invalidate drops the memoized dataset of a page so the next render
// downloads it again. It reports false when the fetcher does not memoize.
func (d *Dashboard) Invalidate(namespace string) bool {
	source, ok := d.sources[namespace]
	if !ok {
		return false
	}
	inv, ok := d.fetcher.(invalidator)
	if !ok {
		return false
	}
	inv.Invalidate(source)
	return true
}

// Reset clears every page's committed filters.
func (d *Dashboard) Reset() {
	d.Session.Reset()
}

type input struct {
	page   *pages.Page
	source string
	submit SubmitFunc
}

// Render drives a page until its filter state settles. A fetch failure is
// not an error here: the returned View carries it and has no table.
func (d *Dashboard) Render(ctx context.Context, namespace string, submit SubmitFunc) (*View, error) {
	page, ok := pages.Lookup(namespace)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, namespace)
	}
	source, ok := d.sources[namespace]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no source", ErrUnknownPage, namespace)
	}

	timer := logging.StartTimer(logging.CategoryRender, "render "+namespace)
	defer timer.StopWithThreshold(500 * time.Millisecond)

	view, passes, err := session.Run(ctx, d.driver, d.Session, input{page: page, source: source, submit: submit}, d.pass)
	if err != nil {
		return nil, err
	}
	view.Passes = passes
	return view, nil
}

func (d *Dashboard) pass(ctx context.Context, sc *session.Context, in input) (*View, bool, error) {
	ns := in.page.Namespace
	sc.Registry.Initialize(ns, in.page.Columns())

	view := &View{
		Page:       in.page,
		Source:     in.source,
		Generation: sc.Registry.Generation(),
	}

	ds, err := d.fetcher.Fetch(ctx, in.source)
	if err != nil {
		view.FetchErr = err
		view.Committed = sc.Registry.Spec(ns)
		view.Phase = sc.Phase(ns)
		logging.RenderError("page %s: %v", ns, err)
		return view, false, nil
	}
	view.Dataset = ds
	view.FetchedAt = ds.FetchedAt
	if sr, ok := d.fetcher.(staleReporter); ok {
		view.Stale = sr.Stale(in.source)
	}

	view.Options, err = in.page.Options(ds)
	if err != nil {
		return nil, false, err
	}

	if in.submit != nil {
		sc.Submit(ns, in.submit(in.page, view.Options, view.Generation))
	}

	view.Committed = sc.Registry.Spec(ns)
	if err := filter.Apply(ds, view.Committed); err != nil {
		return nil, false, fmt.Errorf("page %s: %w", ns, err)
	}

	view.Table, err = in.page.Build(ds)
	if err != nil {
		return nil, false, fmt.Errorf("page %s: %w", ns, err)
	}
	if in.page.HasChart() {
		view.Series, err = in.page.Series(view.Table)
		if err != nil {
			return nil, false, fmt.Errorf("page %s: %w", ns, err)
		}
	}

	changed, err := sc.Reconcile(ns)
	if err != nil {
		return nil, false, err
	}
	view.Phase = sc.Phase(ns)
	return view, changed, nil
}
