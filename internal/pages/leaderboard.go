package pages

import "aoedash/internal/dataset"

var leaderboardNames = map[string]string{
	"player_name":    "Player Name",
	"rank":           "Rank",
	"rating":         "Rating",
	"country":        "Country",
	"win_percentage": "Win Percent",
	"total_matches":  "Total Matches",
	"wins":           "Wins",
	"losses":         "Losses",
	"last_played":    "Last Played",
}

// Leaderboard is the weekly player leaderboard.
func Leaderboard() *Page {
	return &Page{
		Namespace: "l",
		Title:     "Player Leaderboard",
		Heading:   "Aoe2 Weekly Leaderboard",
		Info: `## Player Leaderboard

Look up players by **name** or **country**. Leave a filter empty to include everyone.`,
		Filters: []FilterDef{
			{Column: "player_name", Label: "Select the Player Name to lookup", Placeholder: "ALL - (All values are applied)", Kind: MultiSelect},
			{Column: "country", Label: "Select a Country to lookup", Placeholder: "ALL - (All values are applied)", Kind: MultiSelect},
		},
		Build: func(ds *dataset.Dataset) (*Table, error) {
			return renameSelected(ds, leaderboardNames), nil
		},
	}
}
