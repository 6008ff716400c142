package database

import (
	"fmt"

	"campusgpt-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Indexes for session and history lookups
// - CHECK constraint on query_records.status
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// --- AutoMigrate tables/columns/index tags (non-destructive) ---
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Session{},
			&models.QueryRecord{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Composite / helpful indexes (idempotent) ---
		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_sessions_user_expires ON sessions (user_id, expires_at)`,
			`CREATE INDEX IF NOT EXISTS idx_query_records_user_created ON query_records (user_id, created_at DESC)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Status values are a closed set (idempotent CHECK) ---
		check := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1
		FROM pg_constraint
		WHERE conrelid = 'query_records'::regclass
		  AND conname  = 'chk_query_records_status'
	) THEN
		ALTER TABLE query_records
		ADD CONSTRAINT chk_query_records_status
		CHECK (status IN ('pending', 'completed', 'failed'));
	END IF;
END $$;`
		if err := tx.Exec(check).Error; err != nil {
			return fmt.Errorf("check constraint migration failed: %w", err)
		}

		return nil
	})
}
