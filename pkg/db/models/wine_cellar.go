package models

import (
	"time"

	"github.com/google/uuid"
)

// WineCellar groups items under a single owner with a slot capacity.
type WineCellar struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:text;not null"`
	Description   *string   `gorm:"type:text"`
	TotalCapacity int       `gorm:"column:total_capacity;not null;default:50"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
