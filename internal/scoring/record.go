package scoring

import "bowl_picks/internal/models"

type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// GameResult pairs a game with the user's pick (nil when there is none) and its outcome.
type GameResult struct {
	Game models.Game  `json:"game"`
	Pick *models.Pick `json:"pick"`
	Result
}

// Aggregate folds the outcomes of one user's picks over games into a win/loss tally.
// Picks for games that are not in games are ignored.
func Aggregate(games []models.Game, picks []models.Pick) Record {
	var rec Record

	byGame := picksByGame(picks)
	for _, g := range games {
		switch Resolve(g, byGame[g.ID]).Outcome {
		case OutcomeWin:
			rec.Wins++
		case OutcomeLoss:
			rec.Losses++
		}
	}

	return rec
}

// Breakdown resolves every game against the user's pick, keeping the order of games.
func Breakdown(games []models.Game, picks []models.Pick) []GameResult {
	byGame := picksByGame(picks)

	res := make([]GameResult, 0, len(games))
	for _, g := range games {
		p := byGame[g.ID]
		res = append(res, GameResult{
			Game:   g,
			Pick:   p,
			Result: Resolve(g, p),
		})
	}

	return res
}

// picksByGame indexes picks by game id. When a game has several picks the
// first one wins, same as Dedupe.
func picksByGame(picks []models.Pick) map[int64]*models.Pick {
	m := make(map[int64]*models.Pick, len(picks))
	for i := range picks {
		if _, ok := m[picks[i].GameID]; ok {
			continue
		}
		p := picks[i]
		m[p.GameID] = &p
	}
	return m
}
