package db

import (
	"fmt"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	logger.Info("Starting database migration")

	err := db.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Category{},
		&model.Brand{},
		&model.Perfume{},
		&model.PerfumeImage{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	)
	if err != nil {
		logger.Error("Database migration failed", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed successfully")
	return nil
}
