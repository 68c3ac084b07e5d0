package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// Repository exposes wine item persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an items repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repo bound to the transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts an item.
func (r *Repository) Create(ctx context.Context, item *models.WineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindItem loads an item by UUID.
func (r *Repository) FindItem(ctx context.Context, id uuid.UUID) (*models.WineItem, error) {
	var item models.WineItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOwned loads an item only when its cellar belongs to the user.
func (r *Repository) FindOwned(ctx context.Context, itemID, userID uuid.UUID) (*models.WineItem, error) {
	var item models.WineItem
	if err := r.db.WithContext(ctx).
		Joins("JOIN wine_cellars ON wine_cellars.id = wine_items.cellar_id").
		Where("wine_items.id = ? AND wine_cellars.user_id = ?", itemID, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByCellar returns the cellar's items, newest first. Status and bottle
// status filter when non-empty.
func (r *Repository) ListByCellar(ctx context.Context, cellarID uuid.UUID, status enums.ItemStatus, bottleStatus enums.BottleStatus) ([]models.WineItem, error) {
	query := r.db.WithContext(ctx).Where("cellar_id = ?", cellarID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if bottleStatus != "" {
		query = query.Where("bottle_status = ?", bottleStatus)
	}
	var items []models.WineItem
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial column update.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WineItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WineItem{}, "id = ?", id).Error
}

// FindActiveOpenedItems returns the user's active, opened items that carry a
// drink-by date, in insertion order. This is the sweep's working set.
func (r *Repository) FindActiveOpenedItems(ctx context.Context, userID uuid.UUID) ([]models.WineItem, error) {
	var items []models.WineItem
	if err := r.db.WithContext(ctx).
		Joins("JOIN wine_cellars ON wine_cellars.id = wine_items.cellar_id").
		Where("wine_cellars.user_id = ?", userID).
		Where("wine_items.status = ?", enums.ItemStatusActive).
		Where("wine_items.bottle_status = ?", enums.BottleStatusOpened).
		Where("wine_items.drink_by IS NOT NULL").
		Order("wine_items.created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
