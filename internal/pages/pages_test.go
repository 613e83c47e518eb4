package pages

import (
	"strings"
	"testing"
	"time"

	"aoedash/internal/dataset"
	"aoedash/internal/filter"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Decode(strings.NewReader(csv), "test.csv")
	require.NoError(t, err)
	return ds
}

const leaderboardCSV = `player_name,rank,rating,country,win_percentage,total_matches,wins,losses,last_played
TheViper,1,2900,NO,70.1,100,70,30,2024-05-01
Hera,2,2880,CA,68.0,90,61,29,2024-05-02
Liereyy,3,2850,AT,66.5,80,53,27,2024-04-30
`

const counterCSV = `civ,opponent_civ,map,match_elo_bucket,matches_played,wins
Franks,Mongols,Arabia,1000-1200,10,6
Franks,Mongols,Arena,1000-1200,5,1
Britons,Mongols,Arabia,1200-1400,4,2
Franks,Britons,Arabia,1000-1200,3,3
Aztecs,Mongols,Arena,1000-1200,0,0
`

const performanceCSV = `civ,map,match_elo_bucket,game_date,matches_played,wins
Franks,Arabia,1000-1200,2024-05-02,4,3
Franks,Arabia,1000-1200,2024-05-01,10,5
Franks,Arabia,1000-1200,2024-05-01,10,5
Franks,Arena,1000-1200,2024-05-01,2,2
Britons,Arabia,1000-1200,2024-05-01,6,1
`

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"cc", "cp", "l"}, Namespaces())

	all := All()
	require.Len(t, all, 3)
	assert.Equal(t, "Player Leaderboard", all[0].Title)
	assert.Equal(t, "Civ Counter-picker", all[1].Title)
	assert.Equal(t, "Civ Performance", all[2].Title)

	p, ok := Lookup("cc")
	require.True(t, ok)
	assert.Equal(t, []string{"opponent_civ", "map", "match_elo_bucket"}, p.Columns())

	_, ok = Lookup("zz")
	assert.False(t, ok)
}

func TestFilterDefault(t *testing.T) {
	single := FilterDef{Kind: SingleSelect, DefaultIndex: 1}
	assert.Equal(t, []string{"b"}, single.Default([]string{"a", "b", "c"}))
	assert.Equal(t, []string{"a"}, single.Default([]string{"a"}), "out of range falls back to the first option")
	assert.Nil(t, single.Default(nil))

	multi := FilterDef{Kind: MultiSelect}
	assert.Nil(t, multi.Default([]string{"a", "b"}))
}

func TestOptionsIgnoreSelection(t *testing.T) {
	ds := load(t, counterCSV)
	require.NoError(t, filter.Apply(ds, filter.Spec{"map": {"Arena"}}))

	opts, err := CounterPicker().Options(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arabia", "Arena"}, opts["map"])
	assert.Equal(t, []string{"Britons", "Mongols"}, opts["opponent_civ"])
}

func TestLeaderboardBuild(t *testing.T) {
	ds := load(t, leaderboardCSV)
	require.NoError(t, filter.Apply(ds, filter.Spec{"country": {"NO", "AT"}}))

	got, err := Leaderboard().Build(ds)
	require.NoError(t, err)

	want := &Table{
		Columns: []string{"Player Name", "Rank", "Rating", "Country", "Win Percent", "Total Matches", "Wins", "Losses", "Last Played"},
		Rows: [][]string{
			{"TheViper", "1", "2900", "NO", "70.1", "100", "70", "30", "2024-05-01"},
			{"Liereyy", "3", "2850", "AT", "66.5", "80", "53", "27", "2024-04-30"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("leaderboard mismatch (-want +got):\n%s", diff)
	}
}

func TestCounterPickerBuild(t *testing.T) {
	ds := load(t, counterCSV)
	require.NoError(t, filter.Apply(ds, filter.Spec{"opponent_civ": {"Mongols"}}))

	got, err := CounterPicker().Build(ds)
	require.NoError(t, err)

	want := &Table{
		Columns: []string{"Civ", "Opponent Civ", "Matches Played", "Wins against Opponent Civ", "Win Percentage against Opponent Civ"},
		Rows: [][]string{
			{"Aztecs", "Mongols", "0", "0", ""},
			{"Britons", "Mongols", "4", "2", "50.00"},
			{"Franks", "Mongols", "15", "7", "46.67"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counter picker mismatch (-want +got):\n%s", diff)
	}
}

func TestCounterPickerEmptySelection(t *testing.T) {
	ds := load(t, counterCSV)
	require.NoError(t, filter.Apply(ds, filter.Spec{"opponent_civ": {"Goths"}}))

	got, err := CounterPicker().Build(ds)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
	assert.Len(t, got.Columns, 5)
}

func TestPerformanceBuildAndSeries(t *testing.T) {
	ds := load(t, performanceCSV)
	p := Performance()
	require.NoError(t, filter.Apply(ds, filter.Spec{
		"civ":              {"Franks"},
		"map":              {"Arabia"},
		"match_elo_bucket": {"1000-1200"},
	}))

	table, err := p.Build(ds)
	require.NoError(t, err)

	want := [][]string{
		{"Franks", "Arabia", "1000-1200", "2024-05-01", "20", "10", "50.00"},
		{"Franks", "Arabia", "1000-1200", "2024-05-02", "4", "3", "75.00"},
	}
	if diff := cmp.Diff(want, table.Rows); diff != "" {
		t.Errorf("performance rows mismatch (-want +got):\n%s", diff)
	}

	require.True(t, p.HasChart())
	points, err := p.Series(table)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 50.0, points[0].Value)
	assert.Equal(t, 75.0, points[1].Value)
}

func TestPerformanceDefaultsPickSecondOption(t *testing.T) {
	ds := load(t, performanceCSV)
	p := Performance()
	opts, err := p.Options(ds)
	require.NoError(t, err)

	civ, _ := p.Filter("civ")
	assert.Equal(t, []string{"Franks"}, civ.Default(opts["civ"]))
	m, _ := p.Filter("map")
	assert.Equal(t, []string{"Arena"}, m.Default(opts["map"]))
	elo, _ := p.Filter("match_elo_bucket")
	assert.Equal(t, []string{"1000-1200"}, elo.Default(opts["match_elo_bucket"]), "single option falls back to index 0")
}

func TestBuildMissingMeasure(t *testing.T) {
	ds := load(t, "civ,opponent_civ\nFranks,Mongols\n")
	_, err := CounterPicker().Build(ds)
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestTableCSV(t *testing.T) {
	tbl := &Table{Columns: []string{"Civ", "Win %"}, Rows: [][]string{{"Franks", "50.00"}, {"Goths, the", "1"}}}
	assert.Equal(t, "Civ,Win %\nFranks,50.00\n\"Goths, the\",1\n", tbl.CSV())
}
