package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"bowl_picks/internal/middleware"
	"bowl_picks/internal/models"
)

const maxNameLength = 64

type UserServicer interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateName(ctx context.Context, id int64, name string) (*models.User, error)
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type UserController struct {
	service UserServicer
	log     *slog.Logger
}

func NewUserController(s UserServicer, log *slog.Logger) *UserController {
	return &UserController{
		service: s,
		log:     log,
	}
}

func (c *UserController) GetByID(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.users.GetByID"

	id, err := idParam(r, "id")
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetUser)
		return
	}

	u, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetUser)
		return
	}

	writeJSON(c.log, w, http.StatusOK, u.Profile())
}

func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.users.UpdateMe"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		fail(c.log, w, r, op, validationErr("name must be 1 to %d characters", maxNameLength), ErrUpdate)
		return
	}

	u, err := c.service.UpdateName(r.Context(), userID, name)
	if err != nil {
		fail(c.log, w, r, op, err, ErrUpdate)
		return
	}

	writeJSON(c.log, w, http.StatusOK, u)
}
