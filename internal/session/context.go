// Package session holds one user's interactive dashboard state and the
// render loop that re-runs a page until its filter state settles.
//
// A Context is created once per session and threaded through every render
// call. Nothing in this package is safe for concurrent use: the dashboard
// handles one user action at a time.
package session

import (
	"time"

	"aoedash/internal/filter"
	"aoedash/internal/logging"

	"github.com/google/uuid"
)

// Phase is the reconciliation state of one page.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseComparing
	PhaseCommitting
	PhaseReRenderRequested
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseComparing:
		return "comparing"
	case PhaseCommitting:
		return "committing"
	case PhaseReRenderRequested:
		return "rerender_requested"
	default:
		return "unknown"
	}
}

// Context is the per-session state: committed filters for every page,
// the submissions of the current render pass, and each page's phase.
type Context struct {
	ID        string
	StartedAt time.Time
	Registry  *filter.Registry

	submissions map[string]filter.Spec
	phases      map[string]Phase
}

// New creates a fresh session.
func New() *Context {
	c := &Context{
		ID:          uuid.NewString(),
		StartedAt:   time.Now(),
		Registry:    filter.NewRegistry(),
		submissions: make(map[string]filter.Spec),
		phases:      make(map[string]Phase),
	}
	logging.Session("session %s started", c.ID)
	return c
}

// Submit records the values the widgets of page hold in this pass. It does
// not touch committed state; Reconcile decides whether to commit.
func (c *Context) Submit(page string, current filter.Spec) {
	c.submissions[page] = current.Clone()
}

// Submission returns what page submitted in the current pass, if anything.
func (c *Context) Submission(page string) (filter.Spec, bool) {
	s, ok := c.submissions[page]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Phase reports where page is in the reconciliation state machine.
func (c *Context) Phase(page string) Phase {
	return c.phases[page]
}

// Reset clears every page's committed filters and drops pending
// submissions. Widgets notice the registry generation change and clear
// themselves.
func (c *Context) Reset() {
	c.Registry.Reset()
	c.submissions = make(map[string]filter.Spec)
	for page := range c.phases {
		c.phases[page] = PhaseIdle
	}
	logging.Session("session %s reset, generation %d", c.ID, c.Registry.Generation())
}

// beginPass starts a new render pass: transient submissions are discarded
// and pages that asked for a re-render go back to idle.
func (c *Context) beginPass() {
	c.submissions = make(map[string]filter.Spec)
	for page, p := range c.phases {
		if p == PhaseReRenderRequested {
			c.phases[page] = PhaseIdle
		}
	}
}
