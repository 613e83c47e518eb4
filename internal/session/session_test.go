package session

import (
	"context"
	"errors"
	"testing"

	"aoedash/internal/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCounterSession(t *testing.T) *Context {
	t.Helper()
	sc := New()
	sc.Registry.Initialize("cc", []string{"opponent_civ", "map", "match_elo_bucket"})
	return sc
}

func TestReconcile_NoChangeWhenSetsMatch(t *testing.T) {
	sc := newCounterSession(t)
	require.NoError(t, sc.Registry.Set("cc", "map", []string{"Arena", "Arabia"}))

	sc.Submit("cc", filter.Spec{"map": {"Arabia", "Arena"}})
	changed, err := sc.Reconcile("cc")
	require.NoError(t, err)
	assert.False(t, changed, "selection order must not count as a change")
	assert.Equal(t, PhaseIdle, sc.Phase("cc"))
}

func TestReconcile_CommitsDifferences(t *testing.T) {
	sc := newCounterSession(t)

	sc.Submit("cc", filter.Spec{"map": {"Arena"}, "opponent_civ": {"Franks"}})
	changed, err := sc.Reconcile("cc")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PhaseReRenderRequested, sc.Phase("cc"))

	got, _ := sc.Registry.Get("cc", "map")
	assert.Equal(t, []string{"Arena"}, got)
	got, _ = sc.Registry.Get("cc", "opponent_civ")
	assert.Equal(t, []string{"Franks"}, got)
}

func TestReconcile_MissingColumnInSubmissionMeansEmpty(t *testing.T) {
	sc := newCounterSession(t)
	require.NoError(t, sc.Registry.Set("cc", "map", []string{"Arena"}))

	sc.Submit("cc", filter.Spec{})
	changed, err := sc.Reconcile("cc")
	require.NoError(t, err)
	assert.True(t, changed)

	got, _ := sc.Registry.Get("cc", "map")
	assert.Empty(t, got)
}

func TestReconcile_NothingSubmitted(t *testing.T) {
	sc := newCounterSession(t)
	changed, err := sc.Reconcile("cc")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcile_UnknownColumn(t *testing.T) {
	sc := newCounterSession(t)
	require.NoError(t, sc.Registry.Set("cc", "map", []string{"Arena"}))

	sc.Submit("cc", filter.Spec{"map": {"Nomad"}, "player_name": {"TheViper"}})
	_, err := sc.Reconcile("cc")
	require.ErrorIs(t, err, filter.ErrMissingColumn)

	got, _ := sc.Registry.Get("cc", "map")
	assert.Equal(t, []string{"Arena"}, got, "nothing is committed on a wiring defect")
	assert.Equal(t, PhaseIdle, sc.Phase("cc"))
}

func TestReset_ClearsEverything(t *testing.T) {
	sc := newCounterSession(t)
	sc.Registry.Initialize("l", []string{"player_name", "country"})
	require.NoError(t, sc.Registry.Set("l", "country", []string{"NL"}))
	require.NoError(t, sc.Registry.Set("cc", "map", []string{"Arena"}))
	sc.Submit("cc", filter.Spec{"map": {"Arena"}})

	sc.Reset()

	for _, page := range []string{"l", "cc"} {
		for col, vals := range sc.Registry.Spec(page) {
			assert.Empty(t, vals, "%s/%s", page, col)
		}
	}
	_, ok := sc.Submission("cc")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), sc.Registry.Generation())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "rerender_requested", PhaseReRenderRequested.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

// countingRender mimics a page: it submits the input, reconciles, and only
// produces output once state has settled.
func countingRender(calls *int) RenderFunc[filter.Spec, filter.Spec] {
	return func(ctx context.Context, sc *Context, in filter.Spec) (filter.Spec, bool, error) {
		*calls++
		sc.Registry.Initialize("cc", []string{"map"})
		sc.Submit("cc", in)
		changed, err := sc.Reconcile("cc")
		if err != nil {
			return nil, false, err
		}
		if changed {
			return nil, true, nil
		}
		return sc.Registry.Spec("cc"), false, nil
	}
}

func TestRun_SettlesAfterCommit(t *testing.T) {
	sc := New()
	calls := 0

	out, passes, err := Run(context.Background(), NewDriver(0), sc, filter.Spec{"map": {"Arena"}}, countingRender(&calls))
	require.NoError(t, err)
	assert.Equal(t, 2, passes)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"Arena"}, out["map"])
	assert.Equal(t, PhaseIdle, sc.Phase("cc"))

	out, passes, err = Run(context.Background(), NewDriver(0), sc, filter.Spec{"map": {"Arena"}}, countingRender(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, passes, "steady state needs a single pass")
	assert.Equal(t, []string{"Arena"}, out["map"])
}

func TestRun_DetectsRunawayLoop(t *testing.T) {
	sc := New()
	always := func(ctx context.Context, sc *Context, in int) (int, bool, error) {
		return in, true, nil
	}
	_, passes, err := Run(context.Background(), NewDriver(3), sc, 1, always)
	require.ErrorIs(t, err, ErrRenderLoop)
	assert.Equal(t, 3, passes)
}

func TestRun_PropagatesRenderError(t *testing.T) {
	sc := New()
	boom := errors.New("boom")
	failing := func(ctx context.Context, sc *Context, in int) (int, bool, error) {
		return 0, false, boom
	}
	_, passes, err := Run(context.Background(), NewDriver(0), sc, 0, failing)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, passes)
}

func TestRun_HonorsCancellation(t *testing.T) {
	sc := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, _, err := Run(ctx, NewDriver(0), sc, filter.Spec{}, countingRender(&calls))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
