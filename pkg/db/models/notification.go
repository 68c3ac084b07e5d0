package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// Notification records an outbound push that was dispatched to a user.
// Rows are purged by the cleanup cron job after the retention period.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Kind      enums.NotificationKind `gorm:"type:text;not null"`
	Title     string                 `gorm:"type:text;not null"`
	Body      string                 `gorm:"type:text;not null"`
	SentAt    time.Time              `gorm:"column:sent_at;type:timestamptz;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
