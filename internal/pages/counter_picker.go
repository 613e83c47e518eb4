package pages

import "aoedash/internal/dataset"

// CounterPicker shows how each civ fares against a chosen opponent civ.
func CounterPicker() *Page {
	return &Page{
		Namespace: "cc",
		Title:     "Civ Counter-picker",
		Heading:   "Civ Counter Picker",
		Info: `## Civ Counter-picker

Pick the **opponent civ** you expect to face, optionally narrowed by **map** and **elo range**.
Every civ is listed with its record against that opponent.`,
		Filters: []FilterDef{
			{Column: "opponent_civ", Label: "Select the opponent civ to counter against", Placeholder: "ALL - (All values are applied)", Kind: MultiSelect},
			{Column: "map", Label: "Select a map", Placeholder: "ALL - (All values are applied)", Kind: MultiSelect},
			{Column: "match_elo_bucket", Label: "Select the elo range to analyse", Placeholder: "ALL - (All values are applied)", Kind: MultiSelect},
		},
		Build: buildCounterPicker,
	}
}

func buildCounterPicker(ds *dataset.Dataset) (*Table, error) {
	groups, err := aggregate(ds, []string{"civ", "opponent_civ"}, []string{"matches_played", "wins"})
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: []string{
		"Civ",
		"Opponent Civ",
		"Matches Played",
		"Wins against Opponent Civ",
		"Win Percentage against Opponent Civ",
	}}
	for _, g := range groups {
		matches, wins := g.sums[0], g.sums[1]
		t.Rows = append(t.Rows, []string{
			g.keys[0],
			g.keys[1],
			formatCount(matches),
			formatCount(wins),
			formatPercent(winPercent(wins, matches)),
		})
	}
	return t, nil
}
