package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bowl_picks/internal/models"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int64, bool, error)
	IsAdmin(ctx context.Context, userID int64, appID uint32) (bool, error)
}

// UserEnsurer creates the local profile of an SSO user on first sight.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, id int64) (*models.User, error)
}

type AuthMiddleware struct {
	log       *slog.Logger
	ssoClient TokenValidator
	users     UserEnsurer
	appID     uint32
}

func NewAuthMiddleware(log *slog.Logger, client TokenValidator, users UserEnsurer, appID uint32) *AuthMiddleware {
	return &AuthMiddleware{
		log:       log,
		ssoClient: client,
		users:     users,
		appID:     appID,
	}
}

type contextKey string

const (
	UserIDKey  = contextKey("userID")
	IsAdminKey = contextKey("isAdmin")
)

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(IsAdminKey).(bool)
	return isAdmin
}

func (m *AuthMiddleware) ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "middleware.auth.ValidateToken"

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")

		userID, valid, err := m.ssoClient.ValidateToken(r.Context(), token)
		if err != nil || !valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		isAdmin, err := m.ssoClient.IsAdmin(r.Context(), userID, m.appID)
		if err != nil {
			m.log.Error("failed to resolve permissions",
				slog.String("operation", op),
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
			http.Error(w, "failed to resolve permissions", http.StatusInternalServerError)
			return
		}

		if _, err := m.users.EnsureUser(r.Context(), userID); err != nil {
			m.log.Error("failed to load user profile",
				slog.String("operation", op),
				slog.Int64("user_id", userID),
				slog.String("error", err.Error()))
			http.Error(w, "failed to load user profile", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, IsAdminKey, isAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after ValidateToken.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !IsAdminFromContext(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
