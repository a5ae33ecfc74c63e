package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bowl_picks/internal/models"
	"bowl_picks/internal/storage"
	"bowl_picks/internal/storage/mariadb"

	"gorm.io/gorm"
)

// UserInfoProvider is the part of the SSO client that knows user profiles.
type UserInfoProvider interface {
	GetUserInfo(ctx context.Context, userID int64) (email, steamURL, pathToPhoto string, err error)
}

type UserService struct {
	storage     *mariadb.Storage
	log         *slog.Logger
	sso         UserInfoProvider
	invalidator Invalidator
}

// NewUserService takes the leaderboard as inv, since standings carry user profiles.
func NewUserService(s *mariadb.Storage, log *slog.Logger, sso UserInfoProvider, inv Invalidator) *UserService {
	return &UserService{
		storage:     s,
		log:         log,
		sso:         sso,
		invalidator: inv,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.users.GetByID"

	var u models.User
	if err := s.storage.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}

	return &u, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	const op = "services.users.GetAll"

	var users []models.User
	if err := s.storage.DB.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

func (s *UserService) UpdateName(ctx context.Context, id int64, name string) (*models.User, error) {
	const op = "services.users.UpdateName"

	res := s.storage.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUpdateFailed, res.Error)
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)

	return u, nil
}

// EnsureUser returns the local profile of an SSO user, creating it from the
// identity provider's data on first sight.
func (s *UserService) EnsureUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.users.EnsureUser"

	var u models.User
	err := s.storage.DB.WithContext(ctx).First(&u, id).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, _, photo, err := s.sso.GetUserInfo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u = models.User{
		ID:    id,
		Name:  nameFromEmail(email),
		Email: email,
		Image: photo,
	}

	if err := s.storage.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrCreateFailed, err)
	}

	s.log.Info("user profile created", slog.String("operation", op), slog.Int64("user_id", id))

	s.invalidate(ctx, op)

	return &u, nil
}

func (s *UserService) invalidate(ctx context.Context, op string) {
	if s.invalidator == nil {
		return
	}

	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate leaderboard",
			slog.String("operation", op),
			slog.String("error", err.Error()))
	}
}

func nameFromEmail(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}
