package services

import (
	"context"
	"fmt"
	"log/slog"

	"bowl_picks/internal/models"
	"bowl_picks/internal/scoring"
	"bowl_picks/internal/storage/mariadb"

	"golang.org/x/sync/errgroup"
)

type LeaderboardCache interface {
	Get(ctx context.Context) ([]scoring.Standing, bool, error)
	Set(ctx context.Context, standings []scoring.Standing) error
	Invalidate(ctx context.Context) error
}

type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}

type LeaderboardService struct {
	storage *mariadb.Storage
	log     *slog.Logger
	cache   LeaderboardCache
	metrics CacheRecorder
}

// NewLeaderboardService builds the service. cache and metrics may be nil.
func NewLeaderboardService(s *mariadb.Storage, log *slog.Logger, cache LeaderboardCache, metrics CacheRecorder) *LeaderboardService {
	return &LeaderboardService{
		storage: s,
		log:     log,
		cache:   cache,
		metrics: metrics,
	}
}

type UserPicks struct {
	User   models.Profile       `json:"user"`
	Record scoring.Record       `json:"record"`
	Games  []scoring.GameResult `json:"games"`
}

func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]scoring.Standing, error) {
	const op = "services.leaderboard.Leaderboard"

	if standings, ok := s.cached(ctx); ok {
		return standings, nil
	}

	var (
		users []models.User
		games []models.Game
		picks []models.Pick
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.storage.DB.WithContext(gctx).Order("id").Find(&users).Error
	})
	g.Go(func() error {
		return s.storage.DB.WithContext(gctx).Find(&games).Error
	})
	g.Go(func() error {
		return s.storage.DB.WithContext(gctx).Order("id").Find(&picks).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	standings := scoring.Standings(users, games, picks)

	if s.cache != nil {
		if err := s.cache.Set(ctx, standings); err != nil {
			s.log.Warn("failed to cache leaderboard",
				slog.String("operation", op),
				slog.String("error", err.Error()))
		}
	}

	return standings, nil
}

// UserPicks resolves every game against the user's picks.
func (s *LeaderboardService) UserPicks(ctx context.Context, userID int64) (*UserPicks, error) {
	const op = "services.leaderboard.UserPicks"

	db := s.storage.DB.WithContext(ctx)

	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	var games []models.Game
	if err := db.Order("date, id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var picks []models.Pick
	if err := db.Where("user_id = ?", userID).Order("id").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &UserPicks{
		User:   u.Profile(),
		Record: scoring.Aggregate(games, picks),
		Games:  scoring.Breakdown(games, picks),
	}, nil
}

func (s *LeaderboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func (s *LeaderboardService) cached(ctx context.Context) ([]scoring.Standing, bool) {
	const op = "services.leaderboard.cached"

	if s.cache == nil {
		return nil, false
	}

	standings, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.log.Warn("leaderboard cache unavailable",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}

	if s.metrics != nil {
		s.metrics.RecordCacheLookup(ok)
	}

	return standings, ok
}
