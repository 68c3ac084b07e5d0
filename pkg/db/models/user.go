package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the canonical identity entity, keyed off the LINE user ID.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LineUserID  string    `gorm:"column:line_user_id;type:text;not null;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name;type:text;not null"`
	PictureURL  *string   `gorm:"column:picture_url;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
