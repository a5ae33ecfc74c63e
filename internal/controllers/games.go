package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bowl_picks/internal/importer"
	"bowl_picks/internal/models"
)

type GameServicer interface {
	GetAll(ctx context.Context) ([]models.Game, error)
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	Create(ctx context.Context, g *models.Game) (*models.Game, error)
	Update(ctx context.Context, g *models.Game) (*models.Game, error)
	Delete(ctx context.Context, id int64) error
	ImportSchedule(ctx context.Context, games []models.Game) ([]models.Game, int, error)
}

// GameRequest is the admin payload for creating or replacing a game.
type GameRequest struct {
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	StartTime *time.Time `json:"start_time"`
	AwayTeam  string     `json:"away_team"`
	HomeTeam  string     `json:"home_team"`
	Spread    string     `json:"spread"`
	Total     string     `json:"total"`
	AwayScore *int       `json:"away_score"`
	HomeScore *int       `json:"home_score"`
	Status    string     `json:"status"`
}

type ImportRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

type ImportResponse struct {
	Created []models.Game `json:"created"`
	Skipped int           `json:"skipped"`
}

type GameController struct {
	service GameServicer
	log     *slog.Logger
	client  *http.Client
	loc     *time.Location
}

// NewGameController builds the controller. client is used to download
// schedules by URL, loc is the zone schedule dates are read in.
func NewGameController(s GameServicer, log *slog.Logger, client *http.Client, loc *time.Location) *GameController {
	return &GameController{
		service: s,
		log:     log,
		client:  client,
		loc:     loc,
	}
}

func (c *GameController) GetAll(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetAll"

	games, err := c.service.GetAll(r.Context())
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetGames)
		return
	}

	if games == nil {
		games = []models.Game{}
	}

	writeJSON(c.log, w, http.StatusOK, games)
}

func (c *GameController) GetByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.GetByID"

	id, err := idParam(r, "id")
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetGame)
		return
	}

	game, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetGame)
		return
	}

	writeJSON(c.log, w, http.StatusOK, game)
}

func (c *GameController) Create(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Create"

	var req GameRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(c.log, w, r, op, err, ErrCreate)
		return
	}

	game, err := req.toGame()
	if err != nil {
		fail(c.log, w, r, op, err, ErrCreate)
		return
	}

	created, err := c.service.Create(r.Context(), &game)
	if err != nil {
		fail(c.log, w, r, op, err, ErrCreate)
		return
	}

	writeJSON(c.log, w, http.StatusCreated, created)
}

func (c *GameController) Update(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Update"

	id, err := idParam(r, "id")
	if err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}

	var req GameRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}

	game, err := req.toGame()
	if err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}
	game.ID = id

	updated, err := c.service.Update(r.Context(), &game)
	if err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}

	writeJSON(c.log, w, http.StatusOK, updated)
}

func (c *GameController) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Delete"

	id, err := idParam(r, "id")
	if err != nil {
		fail(c.log, w, r, op, err, ErrDelete)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		fail(c.log, w, r, op, err, ErrDelete)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import loads a bowl schedule from inline HTML or a page URL and stores the
// games that are not known yet.
func (c *GameController) Import(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.games.Import"

	var req ImportRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(c.log, w, r, op, err, ErrImport)
		return
	}

	var (
		games []models.Game
		err   error
	)

	switch {
	case req.HTML != "" && req.URL != "":
		err = validationErr("html and url are mutually exclusive")
	case req.HTML != "":
		games, err = importer.Parse(strings.NewReader(req.HTML), c.loc)
	case req.URL != "":
		if u, perr := url.ParseRequestURI(req.URL); perr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			err = validationErr("url must be an absolute http(s) url")
			break
		}
		games, err = importer.Fetch(r.Context(), c.client, req.URL, c.loc)
	default:
		err = validationErr("html or url is required")
	}
	if err != nil {
		fail(c.log, w, r, op, err, ErrImport)
		return
	}

	created, skipped, err := c.service.ImportSchedule(r.Context(), games)
	if err != nil {
		fail(c.log, w, r, op, err, ErrImport)
		return
	}

	if created == nil {
		created = []models.Game{}
	}

	c.log.Info("schedule imported",
		slog.String("operation", op),
		slog.Int("created", len(created)),
		slog.Int("skipped", skipped))

	writeJSON(c.log, w, http.StatusOK, ImportResponse{Created: created, Skipped: skipped})
}

var gameDateLayouts = []string{time.RFC3339, "2006-01-02"}

func (req GameRequest) toGame() (models.Game, error) {
	name := strings.TrimSpace(req.Name)
	away := strings.TrimSpace(req.AwayTeam)
	home := strings.TrimSpace(req.HomeTeam)

	if name == "" {
		return models.Game{}, validationErr("name is required")
	}
	if away == "" || home == "" {
		return models.Game{}, validationErr("away_team and home_team are required")
	}

	date, ok := parseGameDate(req.Date)
	if !ok {
		return models.Game{}, validationErr("date must be YYYY-MM-DD or RFC 3339, got %q", req.Date)
	}

	status := models.GameStatus(req.Status)
	if req.Status == "" {
		status = models.StatusScheduled
	}
	if !status.Valid() {
		return models.Game{}, validationErr("unknown status %q", req.Status)
	}

	if (req.AwayScore != nil && *req.AwayScore < 0) || (req.HomeScore != nil && *req.HomeScore < 0) {
		return models.Game{}, validationErr("scores must not be negative")
	}

	return models.Game{
		Name:      name,
		Date:      date,
		StartTime: req.StartTime,
		AwayTeam:  away,
		HomeTeam:  home,
		Spread:    strings.TrimSpace(req.Spread),
		Total:     strings.TrimSpace(req.Total),
		AwayScore: req.AwayScore,
		HomeScore: req.HomeScore,
		Status:    status,
	}, nil
}

func parseGameDate(raw string) (time.Time, bool) {
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
