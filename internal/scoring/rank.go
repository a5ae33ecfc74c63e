package scoring

import (
	"sort"

	"bowl_picks/internal/models"
)

type Entry struct {
	User      models.Profile `json:"user"`
	Record    Record         `json:"record"`
	PicksMade int            `json:"picks_made"`
}

type Standing struct {
	Rank int `json:"rank"`
	Entry
}

// Rank orders entries by wins (desc) then losses (asc). Entries with the same
// record keep their input order. Rank is the 1-based display position.
func Rank(entries []Entry) []Standing {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Record, sorted[j].Record
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Losses < b.Losses
	})

	res := make([]Standing, len(sorted))
	for i, e := range sorted {
		res[i] = Standing{Rank: i + 1, Entry: e}
	}

	return res
}

// Standings groups picks by user, aggregates every user's record over games and ranks them.
func Standings(users []models.User, games []models.Game, picks []models.Pick) []Standing {
	byUser := make(map[int64][]models.Pick, len(users))
	for _, p := range picks {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		up := byUser[u.ID]
		entries = append(entries, Entry{
			User:      u.Profile(),
			Record:    Aggregate(games, up),
			PicksMade: len(up),
		})
	}

	return Rank(entries)
}
