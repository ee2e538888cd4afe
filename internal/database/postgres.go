package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// The postgres driver accepts connection URLs directly, so the DATABASE_URL
// value is passed through unchanged.
func openPostgres(url string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(url), &gorm.Config{})
}
