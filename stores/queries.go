package stores

import (
	"context"
	"database/sql"
	"time"

	"campusgpt-backend/apperr"
	"campusgpt-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Queries struct {
	db *gorm.DB
}

func NewQueries(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

func (s *Queries) Begin(ctx context.Context) (QueryTx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, "failed to begin transaction", tx.Error)
	}
	return &queryTx{tx: tx}, nil
}

// RecordFailure runs on a fresh session, never inside the submission
// transaction: that transaction was rolled back, taking the pending row with
// it, so the failed record is re-created here under the same id. The upsert
// keeps the write idempotent.
func (s *Queries) RecordFailure(ctx context.Context, id, userId, text, errorMessage string) error {
	rec := models.QueryRecord{
		Id:           id,
		UserId:       userId,
		QueryText:    text,
		Status:       models.QueryFailed,
		ErrorMessage: errorMessage,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "error_message"}),
	}).Create(&rec).Error
	if err != nil {
		return apperr.Wrap(apperr.StorageFailure, "could not record query failure", err)
	}
	return nil
}

func (s *Queries) ListForUser(ctx context.Context, userId string, limit, offset int) ([]models.QueryRecord, int64, error) {
	var records []models.QueryRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.StorageFailure, "could not fetch query history", err)
	}

	var total int64
	err = s.db.WithContext(ctx).Model(&models.QueryRecord{}).
		Where("user_id = ?", userId).
		Count(&total).Error
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.StorageFailure, "could not count query history", err)
	}
	return records, total, nil
}

func (s *Queries) StatsForUser(ctx context.Context, userId string) (int64, *time.Time, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.QueryRecord{}).
		Where("user_id = ?", userId).
		Count(&total).Error
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.StorageFailure, "could not count queries", err)
	}

	var last sql.NullTime
	err = s.db.WithContext(ctx).Model(&models.QueryRecord{}).
		Where("user_id = ?", userId).
		Select("MAX(created_at)").
		Scan(&last).Error
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.StorageFailure, "could not read last query time", err)
	}
	if !last.Valid {
		return total, nil, nil
	}
	t := last.Time
	return total, &t, nil
}

type queryTx struct {
	tx *gorm.DB
}

func (t *queryTx) InsertPending(ctx context.Context, userId, text string) (string, error) {
	rec := models.QueryRecord{
		Id:        uuid.NewString(),
		UserId:    userId,
		QueryText: text,
		Status:    models.QueryPending,
	}
	if err := t.tx.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", apperr.Wrap(apperr.StorageFailure, "could not create query record", err)
	}
	return rec.Id, nil
}

func (t *queryTx) FinalizeSuccess(ctx context.Context, id, answer string, metadata []byte) error {
	err := t.tx.WithContext(ctx).Model(&models.QueryRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"response_text": answer,
			"status":        models.QueryCompleted,
			"metadata":      datatypes.JSON(metadata),
		}).Error
	if err != nil {
		return apperr.Wrap(apperr.StorageFailure, "could not finalize query record", err)
	}
	return nil
}

func (t *queryTx) Commit() error {
	if err := t.tx.Commit().Error; err != nil {
		return apperr.Wrap(apperr.StorageFailure, "transaction commit failed", err)
	}
	return nil
}

func (t *queryTx) Rollback() error {
	if err := t.tx.Rollback().Error; err != nil {
		return apperr.Wrap(apperr.StorageFailure, "transaction rollback failed", err)
	}
	return nil
}
