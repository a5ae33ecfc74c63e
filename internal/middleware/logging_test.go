package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bowl_picks/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, route: route, status: status})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log, rec))
	r.Get("/api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, middleware.RequestIDFromContext(r.Context()))
		assert.NotSame(t, log, middleware.LoggerFromContext(r.Context(), log))
		w.WriteHeader(http.StatusNotFound)
	})

	t.Run("generates request id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games/42", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
		assert.NoError(t, err)

		require.Len(t, rec.requests, 1)
		assert.Equal(t, recordedRequest{method: http.MethodGet, route: "/api/games/{id}", status: http.StatusNotFound}, rec.requests[0])
		assert.Contains(t, buf.String(), `"route":"/api/games/{id}"`)
	})

	t.Run("keeps a well formed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/games/1", nil)
		req.Header.Set("X-Request-ID", "edge-123")
		rr := httptest.NewRecorder()

		r.ServeHTTP(rr, req)

		assert.Equal(t, "edge-123", rr.Header().Get("X-Request-ID"))
	})

	t.Run("replaces a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/games/1", nil)
		req.Header.Set("X-Request-ID", "bad id with spaces")
		rr := httptest.NewRecorder()

		r.ServeHTTP(rr, req)

		assert.NotEqual(t, "bad id with spaces", rr.Header().Get("X-Request-ID"))
	})
}

func TestRequestLogger_ResponseController(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := middleware.RequestLogger(log, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("chunk"))
		assert.NoError(t, http.NewResponseController(w).Flush())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))

	assert.True(t, rr.Flushed)
	assert.Equal(t, "chunk", rr.Body.String())
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	fallback := slog.Default()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Same(t, fallback, middleware.LoggerFromContext(req.Context(), fallback))
	assert.Empty(t, middleware.RequestIDFromContext(req.Context()))
}
