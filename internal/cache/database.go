package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dropbuddy/dropbuddy/internal/models"
)

// DatabaseStore persists cache entries in the relational database. It is the
// fallback when no REDIS_URL is configured so that rate limiting and session
// caching keep working on a single-binary deployment.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// IncrementWithTTL increments the counter stored under key within a serialized
// transaction, resetting the window when the previous one has expired.
func (s *DatabaseStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var (
		count int64
		ttl   time.Duration
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		// SQLite has no row-level SELECT locking, so the transaction itself
		// provides the serialization here.
		var entry models.CacheEntry
		err := tx.Where("key = ?", key).First(&entry).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && entry.ExpiresAt.Before(now)):
			entry = models.CacheEntry{
				Key:       key,
				Value:     []byte("1"),
				ExpiresAt: now.Add(window),
			}
			if saveErr := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
			}).Create(&entry).Error; saveErr != nil {
				return saveErr
			}
			count = 1
			ttl = window
			return nil
		case err != nil:
			return err
		}

		current := parseCounter(entry.Value)
		current++
		entry.Value = formatCounter(current)
		if saveErr := tx.Model(&models.CacheEntry{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{"value": entry.Value}).Error; saveErr != nil {
			return saveErr
		}

		count = current
		ttl = time.Until(entry.ExpiresAt)
		if ttl < 0 {
			ttl = 0
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return count, ttl, nil
}

// Set upserts a cache entry with the supplied TTL.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&entry).Error
}

// Get returns the value for key, treating expired rows as missing.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.ExpiresAt.Before(time.Now().UTC()) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Delete removes the supplied keys. Missing keys are not an error.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// PurgeExpired removes all entries whose TTL has elapsed. The maintenance
// cleaner invokes it on every cycle.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.CacheEntry{})
	return result.RowsAffected, result.Error
}

func parseCounter(value []byte) int64 {
	n, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func formatCounter(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}
