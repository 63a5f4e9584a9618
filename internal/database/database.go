package database

import (
	"fmt"

	"github.com/motimate/backend/internal/config"
	"github.com/motimate/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema plus the constraints GORM tags cannot express.
// It is also run by tests against in-memory sqlite, so everything outside
// the postgres-only block must stay portable.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.UserGroup{},
		&models.Category{},
		&models.Achievement{},
	); err != nil {
		return err
	}

	// At most one active membership per (user, group). The pre-insert
	// duplicate checks in the service layer race under concurrency; this
	// index is the guarantee.
	activeMembership := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_user_groups_active_pair
ON user_groups (user_id, group_id)
WHERE status = 'active'`
	if err := db.Exec(activeMembership).Error; err != nil {
		return err
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// A category belongs to exactly one user or one group.
	ownerCheck := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'category_owner_check'
  ) THEN
    ALTER TABLE categories
    ADD CONSTRAINT category_owner_check
    CHECK (
      (user_id IS NOT NULL AND group_id IS NULL)
      OR
      (user_id IS NULL AND group_id IS NOT NULL)
    );
  END IF;
END $$;`

	return db.Exec(ownerCheck).Error
}
