package routes

import (
	"log/slog"
	"net/http"

	"bowl_picks/internal/controllers"
	"bowl_picks/internal/metrics"
	authmw "bowl_picks/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Controllers struct {
	Games       *controllers.GameController
	Picks       *controllers.PickController
	Leaderboard *controllers.LeaderboardController
	Users       *controllers.UserController
	Auth        *controllers.AuthController
}

func SetupRouter(
	log *slog.Logger,
	c Controllers,
	auth *authmw.AuthMiddleware,
	recorder *metrics.Recorder,
	corsOrigins []string,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(authmw.RequestLogger(log, recorder))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", recorder.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", c.Auth.Login)
			r.Post("/logout", c.Auth.Logout)
			r.Post("/refresh", c.Auth.Refresh)
			r.With(auth.ValidateToken).Get("/me", c.Auth.Me)
		})

		r.Get("/games", c.Games.GetAll)
		r.Get("/games/{id}", c.Games.GetByID)

		r.Get("/leaderboard", c.Leaderboard.Get)
		r.Get("/leaderboard/{userID}", c.Leaderboard.GetUser)

		r.Route("/users", func(r chi.Router) {
			r.With(auth.ValidateToken).Put("/me", c.Users.UpdateMe)
			r.Get("/{id}", c.Users.GetByID)
		})

		r.Route("/picks", func(r chi.Router) {
			r.Use(auth.ValidateToken)
			r.Get("/", c.Picks.GetMine)
			r.Post("/", c.Picks.Create)
			r.Put("/", c.Picks.BatchUpsert)
			r.Get("/all", c.Picks.GetAll)
			r.Get("/grouped", c.Picks.GetGrouped)
			r.Post("/dedupe", c.Picks.DedupeMine)
			r.Get("/{id}", c.Picks.GetByID)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.ValidateToken)
			r.Use(auth.RequireAdmin)

			r.Route("/games", func(r chi.Router) {
				r.Post("/", c.Games.Create)
				r.Post("/import", c.Games.Import)
				r.Put("/{id}", c.Games.Update)
				r.Delete("/{id}", c.Games.Delete)
			})
			r.Post("/picks/dedupe/{userID}", c.Picks.DedupeUser)
		})
	})

	return r
}
