// Package migration applies the database schema using GORM AutoMigrate.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/veyra-inc/veyra/internal/shared/logger"
)

// Run migrates every registered persistence model.
func Run(db *gorm.DB, log logger.Interface) error {
	models := AutoMigrateModels()

	log.Infow("starting database migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Infow("database migration completed successfully")
	return nil
}
