package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bowl_picks/internal/models"
	"bowl_picks/internal/scoring"
	"bowl_picks/internal/storage"
	"bowl_picks/internal/storage/mariadb"

	"gorm.io/gorm"
)

var ErrPickLocked = errors.New("game already started")

type PickService struct {
	storage     *mariadb.Storage
	log         *slog.Logger
	invalidator Invalidator
}

func NewPickService(s *mariadb.Storage, log *slog.Logger, inv Invalidator) *PickService {
	return &PickService{
		storage:     s,
		log:         log,
		invalidator: inv,
	}
}

// BatchResult reports what BatchUpsert did. Locked lists game ids whose picks
// were left untouched because the game is no longer scheduled.
type BatchResult struct {
	Created []models.Pick `json:"created"`
	Updated []models.Pick `json:"updated"`
	Locked  []int64       `json:"locked"`
}

func (s *PickService) GetAll(ctx context.Context) ([]models.Pick, error) {
	const op = "services.picks.GetAll"

	var picks []models.Pick
	if err := s.storage.DB.WithContext(ctx).Order("id").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return picks, nil
}

func (s *PickService) GetByID(ctx context.Context, id int64) (*models.Pick, error) {
	const op = "services.picks.GetByID"

	var p models.Pick
	if err := s.storage.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &p, nil
}

// GetByUserID returns the user's picks in insertion order.
func (s *PickService) GetByUserID(ctx context.Context, userID int64) ([]models.Pick, error) {
	const op = "services.picks.GetByUserID"

	var picks []models.Pick
	if err := s.storage.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return picks, nil
}

func (s *PickService) GetAllGroupedByUser(ctx context.Context) ([]models.UserWithPicks, error) {
	const op = "services.picks.GetAllGroupedByUser"

	db := s.storage.DB.WithContext(ctx)

	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var picks []models.Pick
	if err := db.Order("id").Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[int64][]models.Pick, len(users))
	for _, p := range picks {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	res := make([]models.UserWithPicks, 0, len(users))
	for _, u := range users {
		up := byUser[u.ID]
		if up == nil {
			up = []models.Pick{}
		}
		res = append(res, models.UserWithPicks{Profile: u.Profile(), Picks: up})
	}

	return res, nil
}

// Create stores a single pick as is, without looking for an existing pick of
// the same user for the same game.
func (s *PickService) Create(ctx context.Context, userID int64, in models.PickInput) (*models.Pick, error) {
	const op = "services.picks.Create"

	var game models.Game
	if err := s.storage.DB.WithContext(ctx).First(&game, in.GameID).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	if game.Status != models.StatusScheduled {
		return nil, fmt.Errorf("%s: %w", op, ErrPickLocked)
	}

	p := &models.Pick{
		UserID:    userID,
		GameID:    in.GameID,
		Side:      in.Side,
		AwayScore: in.AwayScore,
		HomeScore: in.HomeScore,
	}

	if err := s.storage.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	s.invalidate(ctx, op)

	return p, nil
}

// BatchUpsert writes the user's picks in one transaction. For every input the
// first stored pick of (user, game) is updated when it exists, otherwise a new
// pick is inserted. Inputs for games that are not scheduled any more are skipped.
// An unknown game id fails the whole batch with storage.ErrNotFound.
func (s *PickService) BatchUpsert(ctx context.Context, userID int64, inputs []models.PickInput) (*BatchResult, error) {
	const op = "services.picks.BatchUpsert"

	res := &BatchResult{
		Created: []models.Pick{},
		Updated: []models.Pick{},
		Locked:  []int64{},
	}

	if len(inputs) == 0 {
		return res, nil
	}

	gameIDs := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		gameIDs = append(gameIDs, in.GameID)
	}

	err := s.storage.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var games []models.Game
		if err := tx.Where("id IN ?", gameIDs).Find(&games).Error; err != nil {
			return err
		}

		status := make(map[int64]models.GameStatus, len(games))
		for _, g := range games {
			status[g.ID] = g.Status
		}

		for _, in := range inputs {
			st, ok := status[in.GameID]
			if !ok {
				return fmt.Errorf("%w: game %d", storage.ErrNotFound, in.GameID)
			}

			if st != models.StatusScheduled {
				res.Locked = append(res.Locked, in.GameID)
				continue
			}

			var existing models.Pick
			err := tx.Where("user_id = ? AND game_id = ?", userID, in.GameID).
				Order("id").
				First(&existing).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				p := models.Pick{
					UserID:    userID,
					GameID:    in.GameID,
					Side:      in.Side,
					AwayScore: in.AwayScore,
					HomeScore: in.HomeScore,
				}
				if err := tx.Create(&p).Error; err != nil {
					return fmt.Errorf("%w: %w", storage.ErrCreateFailed, err)
				}
				res.Created = append(res.Created, p)

			case err != nil:
				return err

			default:
				existing.Side = in.Side
				existing.AwayScore = in.AwayScore
				existing.HomeScore = in.HomeScore
				if err := tx.Save(&existing).Error; err != nil {
					return fmt.Errorf("%w: %w", storage.ErrUpdateFailed, err)
				}
				res.Updated = append(res.Updated, existing)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(res.Created) > 0 || len(res.Updated) > 0 {
		s.invalidate(ctx, op)
	}

	return res, nil
}

func (s *PickService) Delete(ctx context.Context, ids []int64) error {
	const op = "services.picks.Delete"

	if len(ids) == 0 {
		return nil
	}

	if err := s.storage.DB.WithContext(ctx).Delete(&models.Pick{}, ids).Error; err != nil {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrDeleteFailed, err)
	}

	s.invalidate(ctx, op)

	return nil
}

// DedupeUserPicks keeps the oldest pick of the user for every game and deletes
// the rest. It returns the deleted ids.
func (s *PickService) DedupeUserPicks(ctx context.Context, userID int64) ([]int64, error) {
	const op = "services.picks.DedupeUserPicks"

	picks, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dupes := scoring.Dedupe(picks)
	if len(dupes) == 0 {
		return dupes, nil
	}

	if err := s.Delete(ctx, dupes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("removed duplicate picks",
		slog.String("operation", op),
		slog.Int64("user_id", userID),
		slog.Int("count", len(dupes)))

	return dupes, nil
}

func (s *PickService) invalidate(ctx context.Context, op string) {
	if s.invalidator == nil {
		return
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate leaderboard",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}
