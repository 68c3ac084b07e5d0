package settings

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/internal/reminders"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type settingsStore interface {
	ForUser(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error)
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
	Update(ctx context.Context, userID uuid.UUID, updates map[string]any) error
}

// ServiceParams configure the settings service.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   settingsStore
}

// Service manages per-user notification preferences.
type Service struct {
	logg *logger.Logger
	repo settingsStore
}

// NewService builds a settings service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &Service{logg: params.Logger, repo: params.Repo}, nil
}

// Get returns the user's settings, creating the default row on first access.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*SettingsDTO, error) {
	if err := s.repo.EnsureDefaults(ctx, userID); err != nil {
		return nil, fmt.Errorf("ensure default settings: %w", err)
	}
	row, err := s.repo.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return FromModel(row), nil
}

// Update applies a partial preference update and returns the new state.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, dto UpdateSettingsDTO) (*SettingsDTO, error) {
	updates := map[string]any{}
	if dto.DrinkByEnabled != nil {
		updates["drinkby_enabled"] = *dto.DrinkByEnabled
	}
	if dto.DrinkByWindowDays != nil {
		updates["drinkby_window_days"] = *dto.DrinkByWindowDays
	}
	if dto.OpenedReminderEnabled != nil {
		updates["opened_reminder_enabled"] = *dto.OpenedReminderEnabled
	}
	if dto.SpaceWarningEnabled != nil {
		updates["space_warning_enabled"] = *dto.SpaceWarningEnabled
	}
	if dto.SpaceWarningThreshold != nil {
		updates["space_warning_threshold"] = *dto.SpaceWarningThreshold
	}
	if dto.NotifyTime != nil {
		if _, err := reminders.ParseNotifyTime(*dto.NotifyTime); err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "notify_time must be HH:MM")
		}
		updates["notify_time"] = *dto.NotifyTime
	}

	if len(updates) > 0 {
		if err := s.repo.EnsureDefaults(ctx, userID); err != nil {
			return nil, fmt.Errorf("ensure default settings: %w", err)
		}
		if err := s.repo.Update(ctx, userID, updates); err != nil {
			return nil, fmt.Errorf("update settings: %w", err)
		}
	}

	row, err := s.repo.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload settings: %w", err)
	}
	return FromModel(row), nil
}
