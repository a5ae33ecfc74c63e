package controllers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bowl_picks/internal/controllers"
	"bowl_picks/internal/models"
	"bowl_picks/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) GetAll(ctx context.Context) ([]models.Game, error) {
	args := m.Called(ctx)
	if g := args.Get(0); g != nil {
		return g.([]models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if g := args.Get(0); g != nil {
		return g.(*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGameService) Create(ctx context.Context, g *models.Game) (*models.Game, error) {
	args := m.Called(ctx, g)
	if res := args.Get(0); res != nil {
		return res.(*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGameService) Update(ctx context.Context, g *models.Game) (*models.Game, error) {
	args := m.Called(ctx, g)
	if res := args.Get(0); res != nil {
		return res.(*models.Game), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGameService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameService) ImportSchedule(ctx context.Context, games []models.Game) ([]models.Game, int, error) {
	args := m.Called(ctx, games)
	if res := args.Get(0); res != nil {
		return res.([]models.Game), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gameRouter(c *controllers.GameController) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/games", c.GetAll)
	r.Get("/api/games/{id}", c.GetByID)
	r.Post("/api/admin/games", c.Create)
	r.Put("/api/admin/games/{id}", c.Update)
	r.Delete("/api/admin/games/{id}", c.Delete)
	r.Post("/api/admin/games/import", c.Import)
	return r
}

func TestGameController_GetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("GetAll", mock.Anything).Return([]models.Game{{ID: 1, Name: "Rose Bowl"}}, nil)

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var games []models.Game
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&games))
		assert.Len(t, games, 1)
		svc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("GetAll", mock.Anything).Return(nil, nil)

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("GetAll", mock.Anything).Return(nil, errors.New("db down"))

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/games", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), controllers.ErrGetGames.Error())
		assert.NotContains(t, rr.Body.String(), "db down")
	})
}

func TestGameController_GetByID(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		setup        func(*MockGameService)
		expectedCode int
	}{
		{
			name: "found",
			path: "/api/games/3",
			setup: func(m *MockGameService) {
				m.On("GetByID", mock.Anything, int64(3)).Return(&models.Game{ID: 3}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/games/4",
			setup: func(m *MockGameService) {
				m.On("GetByID", mock.Anything, int64(4)).Return(nil, fmt.Errorf("services.games.GetByID: %w", storage.ErrNotFound))
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "bad id",
			path:         "/api/games/abc",
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "zero id",
			path:         "/api/games/0",
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockGameService)
			tt.setup(svc)

			rr := httptest.NewRecorder()
			gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
				ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedCode, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestGameController_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		setup        func(*MockGameService)
		expectedCode int
	}{
		{
			name: "defaults to scheduled",
			body: `{"name":"Rose Bowl","date":"2025-01-01","away_team":"Ohio State","home_team":"Oregon","spread":"OSU -2.5","total":"53"}`,
			setup: func(m *MockGameService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
					return g.Name == "Rose Bowl" &&
						g.Status == models.StatusScheduled &&
						g.Date.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
				})).Return(&models.Game{ID: 9, Name: "Rose Bowl"}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "missing teams",
			body:         `{"name":"Rose Bowl","date":"2025-01-01"}`,
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "bad date",
			body:         `{"name":"Rose Bowl","date":"New Year's Day","away_team":"A","home_team":"B"}`,
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown status",
			body:         `{"name":"Rose Bowl","date":"2025-01-01","away_team":"A","home_team":"B","status":"halftime"}`,
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "negative score",
			body:         `{"name":"Rose Bowl","date":"2025-01-01","away_team":"A","home_team":"B","away_score":-1}`,
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown field",
			body:         `{"title":"Rose Bowl"}`,
			setup:        func(*MockGameService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockGameService)
			tt.setup(svc)

			rr := httptest.NewRecorder()
			gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
				ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/games", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedCode, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestGameController_Update(t *testing.T) {
	body := `{"name":"Rose Bowl","date":"2025-01-01","away_team":"Ohio State","home_team":"Oregon","status":"final","away_score":41,"home_score":21}`

	t.Run("success", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("Update", mock.Anything, mock.MatchedBy(func(g *models.Game) bool {
			return g.ID == 5 && g.Status == models.StatusFinal && *g.AwayScore == 41
		})).Return(&models.Game{ID: 5, Status: models.StatusFinal}, nil)

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/admin/games/5", strings.NewReader(body)))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("backward transition", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("Update", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("services.games.Update: %w: final -> scheduled", storage.ErrInvalidTransition))

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/admin/games/5", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, storage.ErrInvalidTransition.Error(), strings.TrimSpace(rr.Body.String()))
	})
}

func TestGameController_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("Delete", mock.Anything, int64(5)).Return(nil)

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/admin/games/5", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("Delete", mock.Anything, int64(5)).Return(storage.ErrNotFound)

		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/admin/games/5", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

const scheduleHTML = `<table>
<tr><th>Date</th><th>Bowl</th><th>Away</th><th>Home</th></tr>
<tr><td>2025-01-01</td><td>Rose Bowl</td><td>Ohio State</td><td>Oregon</td></tr>
<tr><td>2025-01-01</td><td>Sugar Bowl</td><td>Notre Dame</td><td>Georgia</td></tr>
</table>`

func TestGameController_Import(t *testing.T) {
	t.Run("inline html", func(t *testing.T) {
		svc := new(MockGameService)
		svc.On("ImportSchedule", mock.Anything, mock.MatchedBy(func(games []models.Game) bool {
			return len(games) == 2 && games[1].Name == "Sugar Bowl"
		})).Return([]models.Game{{ID: 1, Name: "Sugar Bowl"}}, 1, nil)

		body, _ := json.Marshal(controllers.ImportRequest{HTML: scheduleHTML})
		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/games/import", strings.NewReader(string(body))))

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp controllers.ImportResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 1, resp.Skipped)
		assert.Len(t, resp.Created, 1)
		svc.AssertExpectations(t)
	})

	t.Run("by url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(scheduleHTML))
		}))
		defer srv.Close()

		svc := new(MockGameService)
		svc.On("ImportSchedule", mock.Anything, mock.Anything).Return([]models.Game{}, 2, nil)

		body, _ := json.Marshal(controllers.ImportRequest{URL: srv.URL})
		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), srv.Client(), time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/games/import", strings.NewReader(string(body))))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"created":[],"skipped":2}`, rr.Body.String())
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		svc := new(MockGameService)

		body, _ := json.Marshal(controllers.ImportRequest{URL: srv.URL})
		rr := httptest.NewRecorder()
		gameRouter(controllers.NewGameController(svc, discardLogger(), srv.Client(), time.UTC)).
			ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/games/import", strings.NewReader(string(body))))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		svc.AssertNotCalled(t, "ImportSchedule", mock.Anything, mock.Anything)
	})

	for _, tc := range []struct {
		name string
		body string
	}{
		{"empty request", `{}`},
		{"both sources", `{"html":"<table></table>","url":"https://example.com"}`},
		{"relative url", `{"url":"/schedule"}`},
		{"no schedule table", `{"html":"<p>hi</p>"}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockGameService)

			rr := httptest.NewRecorder()
			gameRouter(controllers.NewGameController(svc, discardLogger(), nil, time.UTC)).
				ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/admin/games/import", strings.NewReader(tc.body)))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			svc.AssertNotCalled(t, "ImportSchedule", mock.Anything, mock.Anything)
		})
	}
}
