package settings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

// Repository exposes notification settings persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ForUser loads the settings row for a user.
func (r *Repository) ForUser(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnsureDefaults inserts the default settings row if the user has none.
func (r *Repository) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	row := models.NotificationSettings{
		UserID:                userID,
		DrinkByEnabled:        true,
		DrinkByWindowDays:     7,
		OpenedReminderEnabled: true,
		SpaceWarningEnabled:   true,
		SpaceWarningThreshold: 80,
		NotifyTime:            "09:00",
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
}

// Update applies a partial column update to the user's settings row.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationSettings{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}
