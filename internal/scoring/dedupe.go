package scoring

import "bowl_picks/internal/models"

type pickKey struct {
	userID int64
	gameID int64
}

// Dedupe returns the ids of redundant picks: for every (user, game) the first
// pick in input order is kept and all later ones are returned. The input is
// expected in insertion (primary key) order.
func Dedupe(picks []models.Pick) []int64 {
	seen := make(map[pickKey]struct{}, len(picks))
	dupes := []int64{}

	for _, p := range picks {
		k := pickKey{userID: p.UserID, gameID: p.GameID}
		if _, ok := seen[k]; ok {
			dupes = append(dupes, p.ID)
			continue
		}
		seen[k] = struct{}{}
	}

	return dupes
}
