package pages

import (
	"fmt"
	"sort"
	"strconv"

	"aoedash/internal/dataset"
)

// Performance tracks one civ's win rate over time on one map and elo range.
func Performance() *Page {
	return &Page{
		Namespace: "cp",
		Title:     "Civ Performance",
		Heading:   "Civ Performance (Win %)",
		Info: `## Civ Performance

Choose one **civ**, one **map** and one **elo range** to follow the civ's win percentage day by day.
Export the chart with ` + "`e`" + `.`,
		Filters: []FilterDef{
			{Column: "civ", Label: "Select a civ to view performance over time", Kind: SingleSelect, DefaultIndex: 1},
			{Column: "map", Label: "Select a map", Kind: SingleSelect, DefaultIndex: 1},
			{Column: "match_elo_bucket", Label: "Select the elo range to analyse", Kind: SingleSelect, DefaultIndex: 1},
		},
		Build:      buildPerformance,
		Series:     performanceSeries,
		ChartTitle: "Win Percentage Over Time",
	}
}

func buildPerformance(ds *dataset.Dataset) (*Table, error) {
	groups, err := aggregate(ds,
		[]string{"civ", "map", "match_elo_bucket", "game_date"},
		[]string{"matches_played", "wins"})
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: []string{"Civ", "Map", "Elo", "Match Date", "Matches Played", "Wins", "Win %"}}
	for _, g := range groups {
		matches, wins := g.sums[0], g.sums[1]
		t.Rows = append(t.Rows, []string{
			g.keys[0],
			g.keys[1],
			g.keys[2],
			g.keys[3],
			formatCount(matches),
			formatCount(wins),
			formatPercent(winPercent(wins, matches)),
		})
	}
	return t, nil
}

// performanceSeries reads Match Date and Win % back out of the table,
// skipping days without matches, ordered by date.
func performanceSeries(t *Table) ([]Point, error) {
	di, ok := t.Column("Match Date")
	if !ok {
		return nil, fmt.Errorf("table has no Match Date column")
	}
	vi, ok := t.Column("Win %")
	if !ok {
		return nil, fmt.Errorf("table has no Win %% column")
	}

	points := make([]Point, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r[vi] == "" {
			continue
		}
		d, err := parseDate(r[di])
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(r[vi], 64)
		if err != nil {
			return nil, fmt.Errorf("win percentage %q: %w", r[vi], err)
		}
		points = append(points, Point{Date: d, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}
