package notifylog

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// NotificationDTO is the API shape of a delivered reminder.
type NotificationDTO struct {
	ID     uuid.UUID              `json:"id"`
	Kind   enums.NotificationKind `json:"kind"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	SentAt time.Time              `json:"sent_at"`
}

// FromModel converts a persisted notification row to its API shape.
func FromModel(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:     row.ID,
		Kind:   row.Kind,
		Title:  row.Title,
		Body:   row.Body,
		SentAt: row.SentAt,
	}
}

// FromModels converts a batch of rows.
func FromModels(rows []models.Notification) []NotificationDTO {
	out := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
