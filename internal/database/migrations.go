package database

import (
	"gorm.io/gorm"

	"github.com/dropbuddy/dropbuddy/internal/models"
	"github.com/dropbuddy/dropbuddy/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.CacheEntry{},
	)
}

// SeedData inserts a demo account on an empty database so the starter is
// usable immediately after `migrate seed`. Existing data is never touched.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := crypto.HashPassword("demo1234")
	if err != nil {
		return err
	}

	demo := models.User{
		Username:    "demo",
		Email:       "demo@example.com",
		Password:    hash,
		DisplayName: "Demo User",
		IsActive:    true,
	}
	return db.Create(&demo).Error
}

// MigratedTables lists the table names managed by AutoMigrate, used by the
// migrate CLI status command.
func MigratedTables() []string {
	return []string{"users", "sessions", "cache_entries"}
}
