// Package notifylog persists the outbound notification delivery log.
package notifylog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

const defaultListLimit = 50

// Repository exposes notification log persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notification log repo bound to the provided
// GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a delivery record.
func (r *Repository) Create(ctx context.Context, row *models.Notification) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// ListByUser returns the user's most recent deliveries.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var rows []models.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("sent_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteOlderThan purges log rows created before the cutoff. Used by the
// retention cron job.
func (r *Repository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
