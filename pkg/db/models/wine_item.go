package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// WineItem is a bottle (or batch of identical bottles) stored in a cellar.
//
// DrinkBy is only meaningful when OpenedAt is set: it is stamped once by the
// open action and not recomputed afterward.
type WineItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CellarID uuid.UUID `gorm:"column:cellar_id;type:uuid;not null;index"`

	Name     string  `gorm:"type:text;not null"`
	Category string  `gorm:"type:text;not null"`
	Brand    *string `gorm:"type:text"`
	Vintage  *int
	Region   *string `gorm:"type:text"`
	Country  *string `gorm:"type:text"`
	ABV      *float64 `gorm:"column:abv"`

	Quantity   int     `gorm:"not null;default:1"`
	SpaceUnits float64 `gorm:"column:space_units;not null;default:1"`

	BottleStatus     enums.BottleStatus     `gorm:"column:bottle_status;type:text;not null;default:'unopened'"`
	PreservationMode enums.PreservationMode `gorm:"column:preservation_mode;type:text;not null;default:'immediate'"`
	RemainingAmount  enums.RemainingAmount  `gorm:"column:remaining_amount;type:text;not null;default:'full'"`
	OpenedAt         *time.Time             `gorm:"column:opened_at;type:timestamptz"`
	DrinkBy          *time.Time             `gorm:"column:drink_by;type:date"`

	PurchasePrice *decimal.Decimal `gorm:"column:purchase_price;type:numeric(12,2)"`
	RetailPrice   *decimal.Decimal `gorm:"column:retail_price;type:numeric(12,2)"`
	PurchaseDate  *time.Time       `gorm:"column:purchase_date;type:date"`

	StorageLocation *string `gorm:"column:storage_location;type:text"`

	ImageURL       *string `gorm:"column:image_url;type:text"`
	ImagePublicID  *string `gorm:"column:image_public_id;type:text"`
	RecognizedByAI bool    `gorm:"column:recognized_by_ai;not null;default:false"`

	Status          enums.ItemStatus `gorm:"type:text;not null;default:'active';index"`
	StatusChangedAt *time.Time       `gorm:"column:status_changed_at;type:timestamptz"`

	Rating     *int
	FlavorTags pq.StringArray `gorm:"column:flavor_tags;type:text[]"`
	Notes      *string        `gorm:"type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
