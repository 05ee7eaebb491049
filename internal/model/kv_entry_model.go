package model

import (
	"time"

	"gorm.io/datatypes"
)

// KVEntry is one blob of the postgres-backed key-value store.
// Values are JSON documents kept verbatim, so the column is json rather than jsonb.
type KVEntry struct {
	Key       string         `gorm:"type:varchar(191);primaryKey"`
	Value     datatypes.JSON `gorm:"type:json;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
