package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReminderRecipient pairs a user with their notification settings for the
// cron sweeps.
type ReminderRecipient struct {
	User     models.User
	Settings models.NotificationSettings
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLineUserID retrieves the user bound to a LINE user ID.
func (r *Repository) FindByLineUserID(ctx context.Context, lineUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert inserts a user keyed by LINE user ID, refreshing the profile fields
// on conflict.
func (r *Repository) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "line_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "picture_url", "updated_at"}),
		}).
		Create(user).Error
}

// FindRecipientsWithDrinkByReminder returns every user with the drink-by
// reminder enabled, paired with their settings.
func (r *Repository) FindRecipientsWithDrinkByReminder(ctx context.Context) ([]ReminderRecipient, error) {
	return r.findRecipients(ctx, "drinkby_enabled = ?")
}

// FindRecipientsWithSpaceWarning returns every user with the cellar space
// warning enabled, paired with their settings.
func (r *Repository) FindRecipientsWithSpaceWarning(ctx context.Context) ([]ReminderRecipient, error) {
	return r.findRecipients(ctx, "space_warning_enabled = ?")
}

func (r *Repository) findRecipients(ctx context.Context, condition string) ([]ReminderRecipient, error) {
	var settings []models.NotificationSettings
	if err := r.db.WithContext(ctx).Where(condition, true).Find(&settings).Error; err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(settings))
	for _, s := range settings {
		ids = append(ids, s.UserID)
	}
	var matched []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&matched).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.User, len(matched))
	for _, u := range matched {
		byID[u.ID] = u
	}

	recipients := make([]ReminderRecipient, 0, len(settings))
	for _, s := range settings {
		user, ok := byID[s.UserID]
		if !ok {
			continue
		}
		recipients = append(recipients, ReminderRecipient{User: user, Settings: s})
	}
	return recipients, nil
}
