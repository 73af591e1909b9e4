package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoredItem is one key/value pair of the persistent client store. Rows are
// hard-deleted so eviction frees quota immediately.
type StoredItem struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Key       string         `json:"key" gorm:"column:item_key;uniqueIndex;not null"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	Size      int            `json:"size" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (s *StoredItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
