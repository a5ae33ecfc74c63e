package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"bowl_picks/internal/middleware"
	"bowl_picks/internal/models"
)

type AuthClient interface {
	Login(ctx context.Context, email, password string, appID uint32) (string, string, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
}

type ProfileLoader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type AuthController struct {
	log    *slog.Logger
	client AuthClient
	users  ProfileLoader
	appID  uint32
}

func NewAuthController(log *slog.Logger, client AuthClient, users ProfileLoader, appID uint32) *AuthController {
	return &AuthController{log: log, client: client, users: users, appID: appID}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type MeResponse struct {
	models.User
	IsAdmin bool `json:"is_admin"`
}

const (
	refreshTokenCookieName = "refresh_token"
	refreshTokenMaxAge     = 30 * 24 * 60 * 60
)

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Login"

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.log.Error(ErrParsingJSON.Error(), slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrLogin.Error(), http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		c.log.Warn("email and password are required", slog.String("operation", op))
		http.Error(w, ErrLogin.Error(), http.StatusBadRequest)
		return
	}

	accessToken, refreshToken, err := c.client.Login(r.Context(), email, req.Password, c.appID)
	if err != nil {
		c.log.Error("sso.Login failed", slog.String("operation", op), slog.String("error", err.Error()))
		http.Error(w, ErrLogin.Error(), http.StatusUnauthorized)
		return
	}

	setRefreshCookie(w, refreshToken, refreshTokenMaxAge)

	writeJSON(c.log, w, http.StatusOK, LoginResponse{AccessToken: accessToken})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Logout"

	if cookie, err := r.Cookie(refreshTokenCookieName); err == nil && cookie.Value != "" {
		if err := c.client.Logout(r.Context(), cookie.Value); err != nil {
			c.log.Warn("sso.Logout failed", slog.String("operation", op), slog.String("error", err.Error()))
		}
	}

	setRefreshCookie(w, "", -1)

	writeJSON(c.log, w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Refresh"

	cookie, err := r.Cookie(refreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		http.Error(w, "refresh token required", http.StatusUnauthorized)
		return
	}

	accessToken, newRefreshToken, err := c.client.RefreshToken(r.Context(), cookie.Value)
	if err != nil {
		c.log.Error("sso.Refresh failed", slog.String("operation", op), slog.String("error", err.Error()))
		setRefreshCookie(w, "", -1)
		http.Error(w, ErrRefresh.Error(), http.StatusUnauthorized)
		return
	}

	setRefreshCookie(w, newRefreshToken, refreshTokenMaxAge)

	writeJSON(c.log, w, http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// Me returns the caller's local profile and admin flag.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.auth.Me"

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	u, err := c.users.GetByID(r.Context(), userID)
	if err != nil {
		fail(c.log, w, r, op, err, ErrGetUser)
		return
	}

	writeJSON(c.log, w, http.StatusOK, MeResponse{
		User:    *u,
		IsAdmin: middleware.IsAdminFromContext(r.Context()),
	})
}

func setRefreshCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:        refreshTokenCookieName,
		Value:       value,
		Path:        "/",
		MaxAge:      maxAge,
		HttpOnly:    true,
		Secure:      true,
		SameSite:    http.SameSiteNoneMode,
		Partitioned: true,
	})
}
