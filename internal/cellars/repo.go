package cellars

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// Repository exposes cellar persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cellars repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Usage pairs a cellar with the space its active items occupy.
type Usage struct {
	Cellar    models.WineCellar
	UsedUnits float64
}

// Create inserts a cellar.
func (r *Repository) Create(ctx context.Context, cellar *models.WineCellar) error {
	return r.db.WithContext(ctx).Create(cellar).Error
}

// FindByID loads a cellar by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WineCellar, error) {
	var cellar models.WineCellar
	if err := r.db.WithContext(ctx).First(&cellar, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cellar, nil
}

// ListByUser returns all cellars owned by the user, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WineCellar, error) {
	var cellars []models.WineCellar
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cellars).Error; err != nil {
		return nil, err
	}
	return cellars, nil
}

// Update applies a partial column update.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WineCellar{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the cellar; items cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WineCellar{}, "id = ?", id).Error
}

// UsageByUser returns every cellar of the user with the summed space units
// of its active items.
func (r *Repository) UsageByUser(ctx context.Context, userID uuid.UUID) ([]Usage, error) {
	cellars, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cellars) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(cellars))
	for _, c := range cellars {
		ids = append(ids, c.ID)
	}

	type row struct {
		CellarID uuid.UUID
		Used     float64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.WineItem{}).
		Select("cellar_id, COALESCE(SUM(space_units * quantity), 0) AS used").
		Where("cellar_id IN ? AND status = ?", ids, enums.ItemStatusActive).
		Group("cellar_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	usedBy := make(map[uuid.UUID]float64, len(rows))
	for _, item := range rows {
		usedBy[item.CellarID] = item.Used
	}

	usages := make([]Usage, 0, len(cellars))
	for _, c := range cellars {
		usages = append(usages, Usage{Cellar: c, UsedUnits: usedBy[c.ID]})
	}
	return usages, nil
}
