package config

import (
	"fmt"

	"github.com/bellapacxx/academy-backend/models"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Token{},
		&models.Season{},
		&models.Game{},
		&models.GamePlayer{},
		&models.Card{},
		&models.Chug{},
		&models.PlayerStat{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
