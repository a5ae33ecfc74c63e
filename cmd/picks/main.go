package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ssogrpc "bowl_picks/internal/clients/sso/grpc"
	"bowl_picks/internal/config"
	"bowl_picks/internal/controllers"
	"bowl_picks/internal/metrics"
	"bowl_picks/internal/middleware"
	"bowl_picks/internal/routes"
	"bowl_picks/internal/services"
	"bowl_picks/internal/storage/cache"
	"bowl_picks/internal/storage/mariadb"
)

const (
	envLocal = "local"
	envProd  = "prod"
)

const (
	scheduleFetchTimeout = 15 * time.Second
	redisPingTimeout     = 3 * time.Second
	shutdownTimeout      = 5 * time.Second
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting server", slog.String("env", cfg.Env))

	ssoClient, err := ssogrpc.New(
		context.Background(),
		log,
		cfg.Clients.SSO.Address,
		cfg.Clients.SSO.Timeout,
		cfg.Clients.SSO.RetriesCount,
		cfg.Clients.SSO.Insecure,
	)
	if err != nil {
		log.Error("failed to create sso client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storage, err := mariadb.New(cfg.Database)
	if err != nil {
		log.Error("failed to create database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := storage.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if err := storage.Migrate(); err != nil {
		log.Error("migration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("database init")

	recorder := metrics.NewRecorder()

	var leaderboardCache services.LeaderboardCache
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		client, err := cache.NewClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, leaderboard cache disabled", slog.String("error", err.Error()))
		} else {
			defer client.Close()
			leaderboardCache = cache.NewLeaderboardCache(client, cfg.Redis.LeaderboardTTL)
			log.Info("leaderboard cache init", slog.String("address", cfg.Redis.Address))
		}
	}

	leaderboardService := services.NewLeaderboardService(storage, log, leaderboardCache, recorder)
	gameService := services.NewGameService(storage, log, leaderboardService)
	pickService := services.NewPickService(storage, log, leaderboardService)
	userService := services.NewUserService(storage, log, ssoClient, leaderboardService)

	authMiddleware := middleware.NewAuthMiddleware(log, ssoClient, userService, cfg.AppID)

	r := routes.SetupRouter(log, routes.Controllers{
		Games:       controllers.NewGameController(gameService, log, &http.Client{Timeout: scheduleFetchTimeout}, time.UTC),
		Picks:       controllers.NewPickController(pickService, log),
		Leaderboard: controllers.NewLeaderboardController(leaderboardService, log),
		Users:       controllers.NewUserController(userService, log),
		Auth:        controllers.NewAuthController(log, ssoClient, userService, cfg.AppID),
	}, authMiddleware, recorder, cfg.Cors)

	log.Info("routes init")

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      r,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("listening", slog.String("address", cfg.Address))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		log.Error("server error", slog.String("error", err.Error()))

	case sig := <-shutdown:
		log.Info("shutting down", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown error", slog.String("error", err.Error()))
			if err := server.Close(); err != nil {
				log.Error("force shutdown error", slog.String("error", err.Error()))
			}
		}
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
