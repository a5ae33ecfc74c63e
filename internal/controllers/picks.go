package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"bowl_picks/internal/middleware"
	"bowl_picks/internal/models"
	"bowl_picks/internal/services"
)

type PickServicer interface {
	GetAll(ctx context.Context) ([]models.Pick, error)
	GetByID(ctx context.Context, id int64) (*models.Pick, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Pick, error)
	GetAllGroupedByUser(ctx context.Context) ([]models.UserWithPicks, error)
	Create(ctx context.Context, userID int64, in models.PickInput) (*models.Pick, error)
	BatchUpsert(ctx context.Context, userID int64, inputs []models.PickInput) (*services.BatchResult, error)
	DedupeUserPicks(ctx context.Context, userID int64) ([]int64, error)
}

// PickRequest is one pick as sent by a client. The owner always comes from
// the session, never from the body.
type PickRequest struct {
	GameID    int64  `json:"game_id"`
	Side      string `json:"pick"`
	AwayScore *int   `json:"away_score"`
	HomeScore *int   `json:"home_score"`
}

type DedupeResponse struct {
	Deleted []int64 `json:"deleted"`
}

type PickController struct {
	service PickServicer
	log     *slog.Logger
}

func NewPickController(s PickServicer, log *slog.Logger) *PickController {
	return &PickController{
		service: s,
		log:     log,
	}
}

func (c *PickController) GetMine(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.GetMine"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	picks, err := c.service.GetByUserID(r.Context(), userID)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetPicks)
		return
	}

	writeJSON(c.log, w, http.StatusOK, nonNil(picks))
}

func (c *PickController) GetAll(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.GetAll"

	picks, err := c.service.GetAll(r.Context())
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetPicks)
		return
	}

	writeJSON(c.log, w, http.StatusOK, nonNil(picks))
}

func (c *PickController) GetGrouped(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.GetGrouped"

	grouped, err := c.service.GetAllGroupedByUser(r.Context())
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetPicks)
		return
	}

	if grouped == nil {
		grouped = []models.UserWithPicks{}
	}

	writeJSON(c.log, w, http.StatusOK, grouped)
}

func (c *PickController) GetByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.GetByID"

	id, err := idParam(r, "id")
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetPicks)
		return
	}

	pick, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetPicks)
		return
	}

	writeJSON(c.log, w, http.StatusOK, pick)
}

func (c *PickController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.Create"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req PickRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(c.log, w, r, op, err, ErrSavePicks)
		return
	}

	in, err := req.toInput()
	if err != nil {
		fail(c.log, w, r, op, err, ErrSavePicks)
		return
	}

	pick, err := c.service.Create(r.Context(), userID, in)
	if err != nil {
		fail(c.log, w, r, op, err, ErrSavePicks)
		return
	}

	writeJSON(c.log, w, http.StatusCreated, pick)
}

// BatchUpsert saves all picks of the caller at once. A game may appear only
// once per request.
func (c *PickController) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.BatchUpsert"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var reqs []PickRequest
	if err := decodeJSON(r, &reqs); err != nil {
		fail(c.log, w, r, op, err, ErrSavePicks)
		return
	}

	inputs := make([]models.PickInput, 0, len(reqs))
	seen := make(map[int64]struct{}, len(reqs))
	for i, req := range reqs {
		in, err := req.toInput()
		if err != nil {
			fail(c.log, w, r, op, fmt.Errorf("pick %d: %w", i, err), ErrSavePicks)
			return
		}
		if _, dup := seen[in.GameID]; dup {
			fail(c.log, w, r, op, validationErr("game %d picked more than once", in.GameID), ErrSavePicks)
			return
		}
		seen[in.GameID] = struct{}{}
		inputs = append(inputs, in)
	}

	res, err := c.service.BatchUpsert(r.Context(), userID, inputs)
	if err != nil {
		fail(c.log, w, r, op, err, ErrSavePicks)
		return
	}

	writeJSON(c.log, w, http.StatusOK, res)
}

func (c *PickController) DedupeMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	c.dedupe(w, r, userID)
}

func (c *PickController) DedupeUser(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.picks.DedupeUser"

	userID, err := idParam(r, "userID")
	if err != nil {
		fail(c.log, w, r, op, err, ErrDedupe)
		return
	}

	c.dedupe(w, r, userID)
}

func (c *PickController) dedupe(w http.ResponseWriter, r *http.Request, userID int64) {
	const op = "controllers.picks.dedupe"

	deleted, err := c.service.DedupeUserPicks(r.Context(), userID)
	if err != nil {
		fail(c.log, w, r, op, err, ErrDedupe)
		return
	}

	if deleted == nil {
		deleted = []int64{}
	}

	writeJSON(c.log, w, http.StatusOK, DedupeResponse{Deleted: deleted})
}

func (req PickRequest) toInput() (models.PickInput, error) {
	if req.GameID <= 0 {
		return models.PickInput{}, validationErr("game_id is required")
	}

	side := models.Side(req.Side)
	if !side.Valid() {
		return models.PickInput{}, validationErr("pick must be %q or %q, got %q", models.SideAway, models.SideHome, req.Side)
	}

	if (req.AwayScore != nil && *req.AwayScore < 0) || (req.HomeScore != nil && *req.HomeScore < 0) {
		return models.PickInput{}, validationErr("predicted scores must not be negative")
	}

	return models.PickInput{
		GameID:    req.GameID,
		Side:      side,
		AwayScore: req.AwayScore,
		HomeScore: req.HomeScore,
	}, nil
}

func nonNil(picks []models.Pick) []models.Pick {
	if picks == nil {
		return []models.Pick{}
	}
	return picks
}
