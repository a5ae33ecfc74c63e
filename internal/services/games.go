package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bowl_picks/internal/models"
	"bowl_picks/internal/storage"
	"bowl_picks/internal/storage/mariadb"

	"gorm.io/gorm"
)

// Invalidator drops derived data (the cached leaderboard) after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type GameService struct {
	storage     *mariadb.Storage
	log         *slog.Logger
	invalidator Invalidator
}

func NewGameService(s *mariadb.Storage, log *slog.Logger, inv Invalidator) *GameService {
	return &GameService{
		storage:     s,
		log:         log,
		invalidator: inv,
	}
}

func (s *GameService) GetAll(ctx context.Context) ([]models.Game, error) {
	const op = "services.games.GetAll"

	var games []models.Game
	if err := s.storage.DB.WithContext(ctx).Order("date, id").Find(&games).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return games, nil
}

func (s *GameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	const op = "services.games.GetByID"

	var g models.Game
	if err := s.storage.DB.WithContext(ctx).First(&g, id).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &g, nil
}

func (s *GameService) Create(ctx context.Context, g *models.Game) (*models.Game, error) {
	const op = "services.games.Create"

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(g).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)

	return g, nil
}

// Update replaces every editable field of the game. Moving the status backwards
// (final -> in_progress, ...) is rejected with storage.ErrInvalidTransition.
func (s *GameService) Update(ctx context.Context, g *models.Game) (*models.Game, error) {
	const op = "services.games.Update"

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing models.Game
	if err := tx.First(&existing, g.ID).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	if !existing.Status.CanAdvanceTo(g.Status) {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w: %s -> %s", op, storage.ErrInvalidTransition, existing.Status, g.Status)
	}

	existing.Name = g.Name
	existing.Date = g.Date
	existing.StartTime = g.StartTime
	existing.AwayTeam = g.AwayTeam
	existing.HomeTeam = g.HomeTeam
	existing.Spread = g.Spread
	existing.Total = g.Total
	existing.AwayScore = g.AwayScore
	existing.HomeScore = g.HomeScore
	existing.Status = g.Status

	if err := tx.Save(&existing).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUpdateFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)

	return &existing, nil
}

// Delete removes the game together with every pick made for it.
func (s *GameService) Delete(ctx context.Context, id int64) error {
	const op = "services.games.Delete"

	tx := s.storage.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%s: %w", op, tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	res := tx.Delete(&models.Game{}, id)
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w: %w", op, storage.ErrDeleteFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err := tx.Where("game_id = ?", id).Delete(&models.Pick{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%s: %w: %w", op, storage.ErrDeleteFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)

	return nil
}

// ImportSchedule inserts games that are not stored yet. A game counts as
// stored when one with the same name and date exists.
func (s *GameService) ImportSchedule(ctx context.Context, games []models.Game) ([]models.Game, int, error) {
	const op = "services.games.ImportSchedule"

	var (
		created []models.Game
		skipped int
	)

	err := s.storage.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range games {
			var count int64
			if err := tx.Model(&models.Game{}).
				Where("name = ? AND date = ?", g.Name, g.Date).
				Count(&count).Error; err != nil {
				return err
			}

			if count > 0 {
				skipped++
				continue
			}

			if err := tx.Create(&g).Error; err != nil {
				return fmt.Errorf("%w: %w", storage.ErrCreateFailed, err)
			}
			created = append(created, g)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(created) > 0 {
		s.invalidate(ctx, op)
	}

	return created, skipped, nil
}

func (s *GameService) invalidate(ctx context.Context, op string) {
	if s.invalidator == nil {
		return
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate leaderboard",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}
