package controllers

import (
	"context"
	"log/slog"
	"net/http"

	"bowl_picks/internal/scoring"
	"bowl_picks/internal/services"
)

type LeaderboardServicer interface {
	Leaderboard(ctx context.Context) ([]scoring.Standing, error)
	UserPicks(ctx context.Context, userID int64) (*services.UserPicks, error)
}

type LeaderboardController struct {
	service LeaderboardServicer
	log     *slog.Logger
}

func NewLeaderboardController(s LeaderboardServicer, log *slog.Logger) *LeaderboardController {
	return &LeaderboardController{
		service: s,
		log:     log,
	}
}

func (c *LeaderboardController) Get(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.leaderboard.Get"

	standings, err := c.service.Leaderboard(r.Context())
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetLeaderboard)
		return
	}

	if standings == nil {
		standings = []scoring.Standing{}
	}

	writeJSON(c.log, w, http.StatusOK, standings)
}

// GetUser returns one user's record with every game resolved against their pick.
func (c *LeaderboardController) GetUser(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.leaderboard.GetUser"

	userID, err := idParam(r, "userID")
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetLeaderboard)
		return
	}

	up, err := c.service.UserPicks(r.Context(), userID)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetLeaderboard)
		return
	}

	writeJSON(c.log, w, http.StatusOK, up)
}
