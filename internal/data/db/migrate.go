package db

import (
	"fmt"

	types "github.com/yungbote/worldkernel-backend/internal/domain"
	"gorm.io/gorm"
)

// EnsureExtensions enables uuid-ossp, which backs every uuid_generate_v4() column default.
func EnsureExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	return nil
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&types.Profile{},
		&types.UserCredential{},
		&types.UserToken{},

		// Content
		&types.Kernel{},
	)
}

func EnsureKernelIndexes(db *gorm.DB) error {
	// Feed order: created_at DESC, id ASC over live rows.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_kernel_feed
		ON kernel(created_at DESC, id ASC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_kernel_feed: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_kernel_parent_live
		ON kernel(parent_id, created_at DESC)
		WHERE deleted_at IS NULL AND parent_id IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_kernel_parent_live: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_kernel_tags ON kernel USING GIN (tags);`).Error; err != nil {
		return fmt.Errorf("create idx_kernel_tags: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureKernelIndexes(s.db); err != nil {
		s.log.Error("Kernel index migration failed", "error", err)
		return err
	}
	return nil
}
