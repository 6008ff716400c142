package stores

import (
	"context"
	"errors"

	"campusgpt-backend/apperr"
	"campusgpt-backend/models"

	"gorm.io/gorm"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// Unique index race: two signups with the same username/email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.New(apperr.Conflict, "username or email already exists")
		}
		return apperr.Wrap(apperr.StorageFailure, "could not create user", err)
	}
	return nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, "user lookup failed", err)
	}
	return &user, nil
}

func (s *Users) FindById(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, "user lookup failed", err)
	}
	return &user, nil
}

func (s *Users) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.StorageFailure, "user lookup failed", err)
	}
	return count > 0, nil
}

func (s *Users) Taken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, apperr.Wrap(apperr.StorageFailure, "user lookup failed", err)
	}
	return count > 0, nil
}
