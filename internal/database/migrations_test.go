package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropbuddy/dropbuddy/internal/models"
)

// tempDB opens an isolated on-disk SQLite database; the shared in-memory DSN
// is visible to every connection in the process and would leak between tests.
func tempDB(t *testing.T) Config {
	t.Helper()
	return Config{URL: "sqlite://" + filepath.Join(t.TempDir(), "test.sqlite")}
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	db, err := Open(tempDB(t))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	for _, table := range MigratedTables() {
		require.True(t, db.Migrator().HasTable(table), "expected table %q", table)
	}
}

func TestSeedDataIsIdempotent(t *testing.T) {
	db, err := Open(tempDB(t))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))
	require.NoError(t, SeedData(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var demo models.User
	require.NoError(t, db.Take(&demo, "username = ?", "demo").Error)
	require.NotEqual(t, "demo1234", demo.Password)
}

func TestSeedDataSkipsPopulatedDatabase(t *testing.T) {
	db, err := Open(tempDB(t))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	require.NoError(t, db.Create(&models.User{
		Username: "existing",
		Email:    "existing@example.com",
		Password: "hash",
	}).Error)

	require.NoError(t, SeedData(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
