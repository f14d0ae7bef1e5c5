package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/circlesoft/crm/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the key-value table
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:255"`
	Value     string    `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName returns the table name
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormKVStore implements shared.KeyValueStore on a SQL table
type GormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore creates a store on an open database
func NewGormKVStore(db *gorm.DB) *GormKVStore {
	return &GormKVStore{db: db}
}

// Get returns the value stored under key
func (s *GormKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set inserts or replaces the value under key
func (s *GormKVStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes key if present
func (s *GormKVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys with the given prefix
func (s *GormKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&KVEntry{}).
		Where("substr(entry_key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix).
		Order("entry_key").
		Pluck("entry_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("kv keys %q: %w", prefix, err)
	}
	return keys, nil
}

var _ shared.KeyValueStore = (*GormKVStore)(nil)
