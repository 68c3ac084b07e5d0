package settings

import (
	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

// SettingsDTO is the transport shape for notification preferences.
type SettingsDTO struct {
	DrinkByEnabled        bool   `json:"drinkby_enabled"`
	DrinkByWindowDays     int    `json:"drinkby_window_days"`
	OpenedReminderEnabled bool   `json:"opened_reminder_enabled"`
	SpaceWarningEnabled   bool   `json:"space_warning_enabled"`
	SpaceWarningThreshold int    `json:"space_warning_threshold"`
	NotifyTime            string `json:"notify_time"`
}

// UpdateSettingsDTO carries a partial settings update. Nil fields are left
// untouched.
type UpdateSettingsDTO struct {
	DrinkByEnabled        *bool   `json:"drinkby_enabled" validate:"omitempty"`
	DrinkByWindowDays     *int    `json:"drinkby_window_days" validate:"omitempty,gte=0,lte=365"`
	OpenedReminderEnabled *bool   `json:"opened_reminder_enabled" validate:"omitempty"`
	SpaceWarningEnabled   *bool   `json:"space_warning_enabled" validate:"omitempty"`
	SpaceWarningThreshold *int    `json:"space_warning_threshold" validate:"omitempty,gte=1,lte=100"`
	NotifyTime            *string `json:"notify_time" validate:"omitempty"`
}

func FromModel(m *models.NotificationSettings) *SettingsDTO {
	if m == nil {
		return nil
	}
	return &SettingsDTO{
		DrinkByEnabled:        m.DrinkByEnabled,
		DrinkByWindowDays:     m.DrinkByWindowDays,
		OpenedReminderEnabled: m.OpenedReminderEnabled,
		SpaceWarningEnabled:   m.SpaceWarningEnabled,
		SpaceWarningThreshold: m.SpaceWarningThreshold,
		NotifyTime:            m.NotifyTime,
	}
}
