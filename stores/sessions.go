package stores

import (
	"context"
	"time"

	"campusgpt-backend/apperr"
	"campusgpt-backend/models"

	"gorm.io/gorm"
)

type Sessions struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewSessions(db *gorm.DB, ttl time.Duration) *Sessions {
	return &Sessions{db: db, ttl: ttl}
}

// Open expires every non-expired session for the user, then inserts the new
// one, in a single transaction. Two concurrent logins race on which session
// survives (last commit wins), but never leave two live rows.
func (s *Sessions) Open(ctx context.Context, userId, token, ipAddress, userAgent string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND expires_at > ?", userId, now).
			Update("expires_at", now).Error; err != nil {
			return err
		}
		session := models.Session{
			UserId:       userId,
			SessionToken: token,
			IPAddress:    ipAddress,
			UserAgent:    userAgent,
			ExpiresAt:    now.Add(s.ttl),
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.StorageFailure, "could not open session", err)
	}
	return nil
}

func (s *Sessions) Close(ctx context.Context, token string) error {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("session_token = ? AND expires_at > ?", token, now).
		Update("expires_at", now).Error
	if err != nil {
		return apperr.Wrap(apperr.StorageFailure, "could not close session", err)
	}
	return nil
}
