package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_InitializeIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Initialize("cc", []string{"opponent_civ", "map"})
	require.NoError(t, r.Set("cc", "map", []string{"Arena"}))

	r.Initialize("cc", []string{"opponent_civ", "map", "match_elo_bucket"})

	got, err := r.Get("cc", "map")
	require.NoError(t, err)
	assert.Equal(t, []string{"Arena"}, got, "existing entries survive re-initialization")

	got, err = r.Get("cc", "match_elo_bucket")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"opponent_civ", "map", "match_elo_bucket"}, r.Columns("cc"))
}

func TestRegistry_PagesAreIsolated(t *testing.T) {
	r := NewRegistry()
	r.Initialize("cc", []string{"map"})
	r.Initialize("cp", []string{"map"})

	require.NoError(t, r.Set("cc", "map", []string{"Arena"}))

	cp, err := r.Get("cp", "map")
	require.NoError(t, err)
	assert.Empty(t, cp)
	assert.Equal(t, []string{"cc", "cp"}, r.Pages())
}

func TestRegistry_UnknownColumn(t *testing.T) {
	r := NewRegistry()
	r.Initialize("l", []string{"player_name"})

	err := r.Set("l", "civ", []string{"Franks"})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = r.Get("nope", "civ")
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `page "nope"`)
}

func TestRegistry_SetCopiesValues(t *testing.T) {
	r := NewRegistry()
	r.Initialize("l", []string{"country"})

	vals := []string{"NL", "BR"}
	require.NoError(t, r.Set("l", "country", vals))
	vals[0] = "XX"

	got, _ := r.Get("l", "country")
	assert.Equal(t, []string{"NL", "BR"}, got)

	spec := r.Spec("l")
	spec["country"][0] = "YY"
	got, _ = r.Get("l", "country")
	assert.Equal(t, []string{"NL", "BR"}, got, "Spec returns a snapshot")
}

func TestRegistry_ResetClearsAllPages(t *testing.T) {
	r := NewRegistry()
	r.Initialize("l", []string{"player_name", "country"})
	r.Initialize("cc", []string{"opponent_civ", "map", "match_elo_bucket"})
	require.NoError(t, r.Set("l", "country", []string{"NL"}))
	require.NoError(t, r.Set("cc", "map", []string{"Arena", "Arabia"}))
	assert.Zero(t, r.Generation())

	r.Reset()

	for _, page := range r.Pages() {
		for col, vals := range r.Spec(page) {
			assert.Empty(t, vals, "%s/%s", page, col)
		}
	}
	assert.Equal(t, uint64(1), r.Generation())

	r.Reset()
	assert.Equal(t, uint64(2), r.Generation())
}

func TestRegistry_SpecOfUnknownPage(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Spec("missing"))
	assert.Nil(t, r.Columns("missing"))
}
