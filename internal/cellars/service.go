package cellars

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const defaultCapacity = 50

type cellarStore interface {
	Create(ctx context.Context, cellar *models.WineCellar) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WineCellar, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WineCellar, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	UsageByUser(ctx context.Context, userID uuid.UUID) ([]Usage, error)
}

// ServiceParams configure the cellars service.
type ServiceParams struct {
	Logger *logger.Logger
	Repo   cellarStore
}

// Service owns cellar CRUD and capacity reporting. Every operation is scoped
// to the authenticated owner; a cellar belonging to someone else reads as
// not found.
type Service struct {
	logg *logger.Logger
	repo cellarStore
}

// NewService builds a cellars service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("cellars repository required")
	}
	return &Service{logg: params.Logger, repo: params.Repo}, nil
}

// Create adds a cellar for the user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, dto CreateCellarDTO) (*CellarDTO, error) {
	cellar := &models.WineCellar{
		UserID:        userID,
		Name:          dto.Name,
		Description:   dto.Description,
		TotalCapacity: defaultCapacity,
	}
	if dto.TotalCapacity != nil {
		cellar.TotalCapacity = *dto.TotalCapacity
	}
	if err := s.repo.Create(ctx, cellar); err != nil {
		return nil, fmt.Errorf("create cellar: %w", err)
	}
	return FromModel(cellar), nil
}

// List returns all cellars owned by the user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]CellarDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cellars: %w", err)
	}
	out := make([]CellarDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Get loads one cellar owned by the user.
func (s *Service) Get(ctx context.Context, userID, cellarID uuid.UUID) (*CellarDTO, error) {
	cellar, err := s.ownedCellar(ctx, userID, cellarID)
	if err != nil {
		return nil, err
	}
	return FromModel(cellar), nil
}

// Update applies a partial update to an owned cellar.
func (s *Service) Update(ctx context.Context, userID, cellarID uuid.UUID, dto UpdateCellarDTO) (*CellarDTO, error) {
	if _, err := s.ownedCellar(ctx, userID, cellarID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.TotalCapacity != nil {
		updates["total_capacity"] = *dto.TotalCapacity
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, cellarID, updates); err != nil {
			return nil, fmt.Errorf("update cellar: %w", err)
		}
	}

	cellar, err := s.repo.FindByID(ctx, cellarID)
	if err != nil {
		return nil, fmt.Errorf("reload cellar: %w", err)
	}
	return FromModel(cellar), nil
}

// Delete removes an owned cellar and its items.
func (s *Service) Delete(ctx context.Context, userID, cellarID uuid.UUID) error {
	if _, err := s.ownedCellar(ctx, userID, cellarID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cellarID); err != nil {
		return fmt.Errorf("delete cellar: %w", err)
	}
	return nil
}

// Usage reports fill levels for every cellar of the user.
func (s *Service) Usage(ctx context.Context, userID uuid.UUID) ([]UsageDTO, error) {
	usages, err := s.repo.UsageByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cellar usage: %w", err)
	}
	out := make([]UsageDTO, 0, len(usages))
	for i := range usages {
		u := usages[i]
		out = append(out, UsageDTO{
			Cellar:      *FromModel(&u.Cellar),
			UsedUnits:   u.UsedUnits,
			UsedPercent: UsedPercent(u.UsedUnits, u.Cellar.TotalCapacity),
		})
	}
	return out, nil
}

// UsageFor reports the fill level of a single owned cellar.
func (s *Service) UsageFor(ctx context.Context, userID, cellarID uuid.UUID) (*UsageDTO, error) {
	cellar, err := s.ownedCellar(ctx, userID, cellarID)
	if err != nil {
		return nil, err
	}
	usages, err := s.repo.UsageByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cellar usage: %w", err)
	}
	for i := range usages {
		if usages[i].Cellar.ID == cellarID {
			u := usages[i]
			return &UsageDTO{
				Cellar:      *FromModel(&u.Cellar),
				UsedUnits:   u.UsedUnits,
				UsedPercent: UsedPercent(u.UsedUnits, u.Cellar.TotalCapacity),
			}, nil
		}
	}
	// No active items yet, so the aggregate query had no row for it.
	return &UsageDTO{Cellar: *FromModel(cellar)}, nil
}

// UsedPercent converts used units against capacity to a whole percentage.
// A zero or negative capacity reads as 0 rather than dividing by zero.
func UsedPercent(usedUnits float64, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(usedUnits / float64(capacity) * 100))
}

func (s *Service) ownedCellar(ctx context.Context, userID, cellarID uuid.UUID) (*models.WineCellar, error) {
	cellar, err := s.repo.FindByID(ctx, cellarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "cellar not found")
		}
		return nil, fmt.Errorf("load cellar: %w", err)
	}
	if cellar.UserID != userID {
		return nil, apperrors.New(apperrors.CodeNotFound, "cellar not found")
	}
	return cellar, nil
}
