package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Config contains database connection options. URL carries the full connection
// string (usually the DATABASE_URL environment variable); the remaining fields
// are connection pool passthrough values.
type Config struct {
	URL            string
	MaxConnections int
	PoolTimeout    time.Duration
}

// Open initialises a gorm.DB using the provided configuration. The dialect is
// selected from the URL scheme: sqlite:// (or a bare file path), postgres:// and
// mysql:// are supported.
func Open(cfg Config) (*gorm.DB, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("database: url is required")
	}

	var (
		db  *gorm.DB
		err error
	)

	switch DriverFor(url) {
	case "sqlite":
		db, err = openSQLite(url)
	case "postgres":
		db, err = openPostgres(url)
	case "mysql":
		db, err = openMySQL(url)
	default:
		return nil, fmt.Errorf("database: unsupported url scheme in %q", url)
	}
	if err != nil {
		return nil, err
	}

	if err := applyPoolSettings(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// DriverFor reports the database driver implied by a connection URL.
func DriverFor(url string) string {
	scheme, _, found := strings.Cut(url, "://")
	if !found {
		// Bare paths and :memory: are treated as SQLite.
		return "sqlite"
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "file":
		return "sqlite"
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	default:
		return ""
	}
}

func applyPoolSettings(db *gorm.DB, cfg Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 10
	}

	idleTimeout := cfg.PoolTimeout
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Second
	}

	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxIdleTime(idleTimeout)
	return nil
}

// AutoMigrateAndSeed convenience helper used during application start-up.
func AutoMigrateAndSeed(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := SeedData(db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	return nil
}
