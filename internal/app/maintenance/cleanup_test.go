package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/dropbuddy/dropbuddy/internal/auth"
	"github.com/dropbuddy/dropbuddy/internal/database/testutil"
	"github.com/dropbuddy/dropbuddy/internal/models"
	"github.com/dropbuddy/dropbuddy/pkg/crypto"
)

func TestCleanupCacheEntries(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	now := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)

	stale := models.CacheEntry{Key: "stale", Value: []byte("x"), ExpiresAt: now.Add(-time.Hour)}
	fresh := models.CacheEntry{Key: "fresh", Value: []byte("y"), ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	removed, err := CleanupCacheEntries(context.Background(), db, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCleanupLogFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	oldFile := filepath.Join(dir, "app-2024-01-01.log")
	newFile := filepath.Join(dir, "app-current.log")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(newFile, []byte("new"), 0o644))
	require.NoError(t, os.Chtimes(oldFile, now.Add(-48*time.Hour), now.Add(-48*time.Hour)))

	removed, err := CleanupLogFiles(dir, 24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(oldFile)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(newFile)
	require.NoError(t, err)
}

func TestCleanupLogFilesMissingDirectory(t *testing.T) {
	removed, err := CleanupLogFiles(filepath.Join(t.TempDir(), "absent"), time.Hour, time.Now())
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "cleanup-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	clock := fixedClock{current: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)}

	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: time.Hour,
		RefreshLength:   16,
		Clock:           clock.Now,
	})
	require.NoError(t, err)

	user := seedUser(t, db, "cleanup-user")

	_, expiredSession, err := sessionSvc.CreateSession(user.ID, iauth.SessionMetadata{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", expiredSession.ID).
		Update("expires_at", clock.Now().Add(-2*time.Hour)).Error)

	_, activeSession, err := sessionSvc.CreateSession(user.ID, iauth.SessionMetadata{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.CacheEntry{
		Key:       "stale",
		Value:     []byte("x"),
		ExpiresAt: clock.Now().Add(-time.Minute),
	}).Error)

	logDir := t.TempDir()
	oldLog := filepath.Join(logDir, "old.log")
	require.NoError(t, os.WriteFile(oldLog, []byte("old"), 0o644))
	// Cleanup compares against the injected clock, so backdate relative to it.
	require.NoError(t, os.Chtimes(oldLog, clock.Now().Add(-48*time.Hour), clock.Now().Add(-48*time.Hour)))

	cleaner := NewCleaner(db, sessionSvc,
		WithNow(clock.Now),
		WithLogCleanup(logDir, 24*time.Hour, "@hourly"),
	)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var sessions []models.Session
	require.NoError(t, db.Find(&sessions).Error)
	require.Len(t, sessions, 1)
	require.Equal(t, activeSession.ID, sessions[0].ID)

	var cacheCount int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&cacheCount).Error)
	require.Zero(t, cacheCount)

	_, err = os.Stat(oldLog)
	require.True(t, os.IsNotExist(err))
}

func TestCleanerStartStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	cleaner := NewCleaner(db, nil, WithLogCleanup(t.TempDir(), time.Hour, "@daily"))
	require.NoError(t, cleaner.Start())

	stopped := cleaner.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cleaner did not stop in time")
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("password")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fixedClock struct {
	current time.Time
}

func (c fixedClock) Now() time.Time {
	return c.current
}
