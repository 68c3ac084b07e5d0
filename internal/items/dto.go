package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// ItemDTO is the transport shape for a wine item.
type ItemDTO struct {
	ID       uuid.UUID `json:"id"`
	CellarID uuid.UUID `json:"cellar_id"`

	Name     string   `json:"name"`
	Category string   `json:"category"`
	Brand    *string  `json:"brand,omitempty"`
	Vintage  *int     `json:"vintage,omitempty"`
	Region   *string  `json:"region,omitempty"`
	Country  *string  `json:"country,omitempty"`
	ABV      *float64 `json:"abv,omitempty"`

	Quantity   int     `json:"quantity"`
	SpaceUnits float64 `json:"space_units"`

	BottleStatus     enums.BottleStatus     `json:"bottle_status"`
	PreservationMode enums.PreservationMode `json:"preservation_mode"`
	RemainingAmount  enums.RemainingAmount  `json:"remaining_amount"`
	OpenedAt         *time.Time             `json:"opened_at,omitempty"`
	DrinkBy          *string                `json:"drink_by,omitempty"`

	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	RetailPrice   *decimal.Decimal `json:"retail_price,omitempty"`
	PurchaseDate  *string          `json:"purchase_date,omitempty"`

	StorageLocation *string `json:"storage_location,omitempty"`

	ImageURL       *string `json:"image_url,omitempty"`
	RecognizedByAI bool    `json:"recognized_by_ai"`

	Status enums.ItemStatus `json:"status"`

	Rating     *int     `json:"rating,omitempty"`
	FlavorTags []string `json:"flavor_tags,omitempty"`
	Notes      *string  `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateItemDTO is the payload for adding a bottle.
type CreateItemDTO struct {
	CellarID uuid.UUID `json:"cellar_id" validate:"required"`

	Name     string   `json:"name" validate:"required,max=200"`
	Category string   `json:"category" validate:"required,max=100"`
	Brand    *string  `json:"brand" validate:"omitempty,max=200"`
	Vintage  *int     `json:"vintage" validate:"omitempty,gte=1800,lte=2100"`
	Region   *string  `json:"region" validate:"omitempty,max=200"`
	Country  *string  `json:"country" validate:"omitempty,max=100"`
	ABV      *float64 `json:"abv" validate:"omitempty,gte=0,lte=100"`

	Quantity   *int     `json:"quantity" validate:"omitempty,gte=1,lte=1000"`
	SpaceUnits *float64 `json:"space_units" validate:"omitempty,gt=0"`

	PreservationMode *string `json:"preservation_mode" validate:"omitempty,oneof=immediate aging"`

	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	RetailPrice   *decimal.Decimal `json:"retail_price"`
	PurchaseDate  *string          `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`

	StorageLocation *string `json:"storage_location" validate:"omitempty,max=200"`

	ImageURL      *string `json:"image_url" validate:"omitempty,url"`
	ImagePublicID *string `json:"image_public_id" validate:"omitempty,max=300"`

	RecognizedByAI bool `json:"recognized_by_ai"`

	FlavorTags []string `json:"flavor_tags" validate:"omitempty,max=20,dive,max=50"`
	Notes      *string  `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateItemDTO is a partial item update. Nil fields are left untouched.
type UpdateItemDTO struct {
	Name     *string  `json:"name" validate:"omitempty,max=200"`
	Category *string  `json:"category" validate:"omitempty,max=100"`
	Brand    *string  `json:"brand" validate:"omitempty,max=200"`
	Vintage  *int     `json:"vintage" validate:"omitempty,gte=1800,lte=2100"`
	Region   *string  `json:"region" validate:"omitempty,max=200"`
	Country  *string  `json:"country" validate:"omitempty,max=100"`
	ABV      *float64 `json:"abv" validate:"omitempty,gte=0,lte=100"`

	Quantity   *int     `json:"quantity" validate:"omitempty,gte=1,lte=1000"`
	SpaceUnits *float64 `json:"space_units" validate:"omitempty,gt=0"`

	PreservationMode *string `json:"preservation_mode" validate:"omitempty,oneof=immediate aging"`

	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	RetailPrice   *decimal.Decimal `json:"retail_price"`
	PurchaseDate  *string          `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`

	StorageLocation *string `json:"storage_location" validate:"omitempty,max=200"`

	Rating     *int     `json:"rating" validate:"omitempty,gte=1,lte=5"`
	FlavorTags []string `json:"flavor_tags" validate:"omitempty,max=20,dive,max=50"`
	Notes      *string  `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateStatusDTO moves an item through its lifecycle.
type UpdateStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=active sold gifted consumed"`
}

// UpdateRemainingDTO adjusts the fill level of an opened bottle.
type UpdateRemainingDTO struct {
	RemainingAmount string `json:"remaining_amount" validate:"required,oneof=full 3/4 1/2 1/4 empty"`
}

// RemainingDTO reports how long an opened bottle has left.
type RemainingDTO struct {
	ItemID        uuid.UUID `json:"item_id"`
	DrinkBy       *string   `json:"drink_by,omitempty"`
	DaysRemaining *int      `json:"days_remaining,omitempty"`
	PastDue       bool      `json:"past_due"`
}

const dateLayout = "2006-01-02"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func FromModel(m *models.WineItem) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:               m.ID,
		CellarID:         m.CellarID,
		Name:             m.Name,
		Category:         m.Category,
		Brand:            m.Brand,
		Vintage:          m.Vintage,
		Region:           m.Region,
		Country:          m.Country,
		ABV:              m.ABV,
		Quantity:         m.Quantity,
		SpaceUnits:       m.SpaceUnits,
		BottleStatus:     m.BottleStatus,
		PreservationMode: m.PreservationMode,
		RemainingAmount:  m.RemainingAmount,
		OpenedAt:         m.OpenedAt,
		DrinkBy:          formatDate(m.DrinkBy),
		PurchasePrice:    m.PurchasePrice,
		RetailPrice:      m.RetailPrice,
		PurchaseDate:     formatDate(m.PurchaseDate),
		StorageLocation:  m.StorageLocation,
		ImageURL:         m.ImageURL,
		RecognizedByAI:   m.RecognizedByAI,
		Status:           m.Status,
		Rating:           m.Rating,
		FlavorTags:       []string(m.FlavorTags),
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
