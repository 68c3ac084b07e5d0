package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationSettings holds per-user reminder preferences. NotifyTime is a
// local wall-clock time ("HH:MM") interpreted in the configured reference
// timezone.
type NotificationSettings struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	DrinkByEnabled    bool `gorm:"column:drinkby_enabled;not null;default:true"`
	DrinkByWindowDays int  `gorm:"column:drinkby_window_days;not null;default:7"`

	OpenedReminderEnabled bool `gorm:"column:opened_reminder_enabled;not null;default:true"`

	SpaceWarningEnabled   bool `gorm:"column:space_warning_enabled;not null;default:true"`
	SpaceWarningThreshold int  `gorm:"column:space_warning_threshold;not null;default:80"`

	NotifyTime string `gorm:"column:notify_time;type:text;not null;default:'09:00'"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
