package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/blueprint-api/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultCacheSize = 256

// GormStore persists items in the stored_items table, with an LRU read
// cache in front of it.
type GormStore struct {
	db    *gorm.DB
	quota int
	cache *lru.Cache[string, []byte]
}

// NewGormStore returns a store over db. quota <= 0 disables the size limit.
// For namespaced keys the quota applies to each namespace on its own.
func NewGormStore(db *gorm.DB, quota int) (*GormStore, error) {
	cache, err := lru.New[string, []byte](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create store cache: %w", err)
	}
	return &GormStore{db: db, quota: quota, cache: cache}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := s.cache.Get(key); ok {
		return append([]byte(nil), v...), nil
	}

	var item models.StoredItem
	err := s.db.WithContext(ctx).Where("item_key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	value := []byte(item.Value)
	s.cache.Add(key, value)
	return append([]byte(nil), value...), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	size := len(key) + len(value)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.quota > 0 {
			var used int64
			q := tx.Model(&models.StoredItem{}).Where("item_key <> ?", key)
			if ns := namespaceOf(key); ns != "" {
				q = q.Where("substr(item_key, 1, ?) = ?", len(ns), ns)
			}
			if err := q.Select("COALESCE(SUM(size), 0)").Scan(&used).Error; err != nil {
				return fmt.Errorf("measure store usage: %w", err)
			}
			if int(used)+size > s.quota {
				return ErrQuotaExceeded
			}
		}

		item := models.StoredItem{
			Key:   key,
			Value: datatypes.JSON(value),
			Size:  size,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "size", "updated_at"}),
		}).Create(&item).Error
		if err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		s.cache.Remove(key)
		return err
	}

	s.cache.Add(key, append([]byte(nil), value...))
	return nil
}

func (s *GormStore) Remove(ctx context.Context, key string) error {
	s.cache.Remove(key)
	if err := s.db.WithContext(ctx).Where("item_key = ?", key).Delete(&models.StoredItem{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&models.StoredItem{}).Order("item_key").Pluck("item_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}
