package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

// UserDTO is the transport shape for the authenticated user.
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	LineUserID  string    `json:"line_user_id"`
	DisplayName string    `json:"display_name"`
	PictureURL  *string   `json:"picture_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		LineUserID:  u.LineUserID,
		DisplayName: u.DisplayName,
		PictureURL:  u.PictureURL,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
