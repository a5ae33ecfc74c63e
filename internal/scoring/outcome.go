// Package scoring resolves picks against game results and builds the leaderboard.
// Everything here works on snapshots already loaded from storage and never
// touches the database.
package scoring

import "bowl_picks/internal/models"

type Outcome string

const (
	OutcomeNoPick     Outcome = "no_pick"
	OutcomePending    Outcome = "pending"
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWin        Outcome = "win"
	OutcomeLoss       Outcome = "loss"
)

// Result is the outcome of one pick for one game. PickOpen is true while the
// game is still scheduled, so a NoPick can still be fixed by the user.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	PickOpen bool    `json:"pick_open"`
}

// Resolve derives the outcome of pick for game. pick may be nil.
//
// A final game with a missing score stays pending. A tie on a final game is a
// loss for both sides.
func Resolve(game models.Game, pick *models.Pick) Result {
	res := Result{PickOpen: game.Status == models.StatusScheduled}

	if pick == nil {
		res.Outcome = OutcomeNoPick
		return res
	}

	switch game.Status {
	case models.StatusInProgress:
		res.Outcome = OutcomeInProgress
	case models.StatusFinal:
		res.Outcome = finalOutcome(game, pick.Side)
	default:
		res.Outcome = OutcomePending
	}

	return res
}

func finalOutcome(game models.Game, side models.Side) Outcome {
	if !game.HasScores() {
		return OutcomePending
	}

	winner, ok := game.Winner()
	if ok && winner == side {
		return OutcomeWin
	}

	return OutcomeLoss
}
