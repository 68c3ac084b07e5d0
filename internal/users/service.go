package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type userStore interface {
	FindByLineUserID(ctx context.Context, lineUserID string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

type settingsEnsurer interface {
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
}

// ServiceParams configure the users service.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     userStore
	Settings settingsEnsurer
}

// Service resolves LINE identities to platform users.
type Service struct {
	logg     *logger.Logger
	repo     userStore
	settings settingsEnsurer
}

// NewService builds a users service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings ensurer required")
	}
	return &Service{logg: params.Logger, repo: params.Repo, settings: params.Settings}, nil
}

// ResolveFromProfile upserts the user for a verified LINE profile and makes
// sure a default notification settings row exists.
func (s *Service) ResolveFromProfile(ctx context.Context, profile line.Profile) (*models.User, error) {
	user := &models.User{
		LineUserID:  profile.UserID,
		DisplayName: profile.DisplayName,
	}
	if profile.PictureURL != "" {
		pic := profile.PictureURL
		user.PictureURL = &pic
	}
	if err := s.repo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	// The upsert does not return the row on conflict, so reload by the
	// stable key.
	persisted, err := s.repo.FindByLineUserID(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user after upsert: %w", err)
	}

	if err := s.settings.EnsureDefaults(ctx, persisted.ID); err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, persisted.ID.String()), "ensuring default settings failed", err)
	}
	return persisted, nil
}
