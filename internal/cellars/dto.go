package cellars

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

// CellarDTO is the transport shape for a cellar.
type CellarDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	TotalCapacity int       `json:"total_capacity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UsageDTO reports how full a cellar is.
type UsageDTO struct {
	Cellar      CellarDTO `json:"cellar"`
	UsedUnits   float64   `json:"used_units"`
	UsedPercent int       `json:"used_percent"`
}

// CreateCellarDTO is the payload for creating a cellar.
type CreateCellarDTO struct {
	Name          string  `json:"name" validate:"required,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=500"`
	TotalCapacity *int    `json:"total_capacity" validate:"omitempty,gte=1,lte=10000"`
}

// UpdateCellarDTO is a partial cellar update. Nil fields are left untouched.
type UpdateCellarDTO struct {
	Name          *string `json:"name" validate:"omitempty,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=500"`
	TotalCapacity *int    `json:"total_capacity" validate:"omitempty,gte=1,lte=10000"`
}

func FromModel(m *models.WineCellar) *CellarDTO {
	if m == nil {
		return nil
	}
	return &CellarDTO{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		TotalCapacity: m.TotalCapacity,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
