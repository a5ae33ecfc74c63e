package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"bowl_picks/internal/importer"
	"bowl_picks/internal/middleware"
	"bowl_picks/internal/services"
	"bowl_picks/internal/storage"

	"github.com/go-chi/chi/v5"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidID      = errors.New("invalid id")
	ErrParsingJSON    = errors.New("failed to parse request body")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrGetGames       = errors.New("failed to get games")
	ErrGetGame        = errors.New("failed to get game")
	ErrCreate         = errors.New("failed to create")
	ErrUpdate         = errors.New("failed to update")
	ErrDelete         = errors.New("failed to delete")
	ErrImport         = errors.New("failed to import schedule")
	ErrGetPicks       = errors.New("failed to get picks")
	ErrSavePicks      = errors.New("failed to save picks")
	ErrDedupe         = errors.New("failed to remove duplicate picks")
	ErrGetLeaderboard = errors.New("failed to get leaderboard")
	ErrGetUser        = errors.New("failed to get user")
	ErrLogin          = errors.New("failed to login")
	ErrRefresh        = errors.New("failed to refresh tokens")
	ErrEncoding       = errors.New("failed to encode")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Errors built in this package carry their own client facing message.
var requestErrors = []error{ErrValidation, ErrInvalidID, ErrParsingJSON}

// Errors from lower layers are answered with the sentinel text only.
var clientErrors = []error{
	storage.ErrInvalidTransition,
	services.ErrPickLocked,
	importer.ErrNoSchedule,
	importer.ErrMissingColumn,
	importer.ErrBadRow,
}

// statusFor maps an error to an HTTP status and the message sent to the client.
func statusFor(err error, fallback error) (int, string) {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound, ErrNotFound.Error()
	}

	for _, target := range requestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}

	if errors.Is(err, importer.ErrFetch) {
		return http.StatusBadGateway, fallback.Error()
	}

	return http.StatusInternalServerError, fallback.Error()
}

func fail(log *slog.Logger, w http.ResponseWriter, r *http.Request, op string, err, fallback error) {
	status, msg := statusFor(err, fallback)

	l := middleware.LoggerFromContext(r.Context(), log)
	if status >= http.StatusInternalServerError {
		l.Error(fallback.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	} else {
		l.Warn(fallback.Error(), slog.String("operation", op), slog.String("error", err.Error()))
	}

	http.Error(w, msg, status)
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(ErrEncoding.Error(), slog.String("error", err.Error()))
	}
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrParsingJSON, err)
	}
	return nil
}
