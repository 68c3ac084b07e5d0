package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/internal/reminders"
	"github.com/cellarline/cellarline-backend/internal/shelflife"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type itemStore interface {
	Create(ctx context.Context, item *models.WineItem) error
	FindOwned(ctx context.Context, itemID, userID uuid.UUID) (*models.WineItem, error)
	ListByCellar(ctx context.Context, cellarID uuid.UUID, status enums.ItemStatus, bottleStatus enums.BottleStatus) ([]models.WineItem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type txStoreFactory func(tx *gorm.DB) itemStore

type cellarReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.WineCellar, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type settingsReader interface {
	ForUser(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error)
}

type openScheduler interface {
	ScheduleOpenedBottleReminder(ctx context.Context, item models.WineItem, user models.User, prefs models.NotificationSettings)
	CancelOpenedBottleReminder(itemID, userID uuid.UUID)
}

// ServiceParams configure the items service.
type ServiceParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Repo      itemStore
	TxFactory txStoreFactory
	Cellars   cellarReader
	Users     userReader
	Settings  settingsReader
	Scheduler openScheduler
	Location  *time.Location
}

// Service owns the wine item lifecycle, including the open action that
// stamps the drink-by date and registers the one-shot reminder.
type Service struct {
	logg      *logger.Logger
	db        txRunner
	repo      itemStore
	txFactory txStoreFactory
	cellars   cellarReader
	users     userReader
	settings  settingsReader
	scheduler openScheduler
	loc       *time.Location
	now       func() time.Time
}

// NewService builds an items service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if params.Cellars == nil {
		return nil, fmt.Errorf("cellars reader required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users reader required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("reminder scheduler required")
	}
	if params.Location == nil {
		return nil, fmt.Errorf("reference timezone required")
	}
	txFactory := params.TxFactory
	if txFactory == nil {
		txFactory = func(tx *gorm.DB) itemStore { return NewRepository(tx) }
	}
	return &Service{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repo,
		txFactory: txFactory,
		cellars:   params.Cellars,
		users:     params.Users,
		settings:  params.Settings,
		scheduler: params.Scheduler,
		loc:       params.Location,
		now:       time.Now,
	}, nil
}

// Create adds an item to one of the user's cellars.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, dto CreateItemDTO) (*ItemDTO, error) {
	if err := s.checkCellarOwnership(ctx, userID, dto.CellarID); err != nil {
		return nil, err
	}

	item := &models.WineItem{
		CellarID:         dto.CellarID,
		Name:             dto.Name,
		Category:         dto.Category,
		Brand:            dto.Brand,
		Vintage:          dto.Vintage,
		Region:           dto.Region,
		Country:          dto.Country,
		ABV:              dto.ABV,
		Quantity:         1,
		SpaceUnits:       1,
		BottleStatus:     enums.BottleStatusUnopened,
		PreservationMode: enums.PreservationModeImmediate,
		RemainingAmount:  enums.RemainingFull,
		PurchasePrice:    dto.PurchasePrice,
		RetailPrice:      dto.RetailPrice,
		StorageLocation:  dto.StorageLocation,
		ImageURL:         dto.ImageURL,
		ImagePublicID:    dto.ImagePublicID,
		RecognizedByAI:   dto.RecognizedByAI,
		Status:           enums.ItemStatusActive,
		FlavorTags:       pq.StringArray(dto.FlavorTags),
		Notes:            dto.Notes,
	}
	if dto.Quantity != nil {
		item.Quantity = *dto.Quantity
	}
	if dto.SpaceUnits != nil {
		item.SpaceUnits = *dto.SpaceUnits
	}
	if dto.PreservationMode != nil && enums.PreservationMode(*dto.PreservationMode).IsValid() {
		item.PreservationMode = enums.PreservationMode(*dto.PreservationMode)
	}
	if dto.PurchaseDate != nil {
		parsed, err := time.ParseInLocation(dateLayout, *dto.PurchaseDate, s.loc)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "purchase_date must be YYYY-MM-DD")
		}
		item.PurchaseDate = &parsed
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return FromModel(item), nil
}

// List returns the items in one of the user's cellars.
func (s *Service) List(ctx context.Context, userID, cellarID uuid.UUID, status, bottleStatus string) ([]ItemDTO, error) {
	if err := s.checkCellarOwnership(ctx, userID, cellarID); err != nil {
		return nil, err
	}

	var filter enums.ItemStatus
	if status != "" {
		parsed, err := enums.ParseItemStatus(status)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "invalid status filter")
		}
		filter = parsed
	}

	var bottleFilter enums.BottleStatus
	if bottleStatus != "" {
		parsed, err := enums.ParseBottleStatus(bottleStatus)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "invalid bottle_status filter")
		}
		bottleFilter = parsed
	}

	rows, err := s.repo.ListByCellar(ctx, cellarID, filter, bottleFilter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	out := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Get loads one item owned by the user.
func (s *Service) Get(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

// Update applies a partial update to an owned item.
func (s *Service) Update(ctx context.Context, userID, itemID uuid.UUID, dto UpdateItemDTO) (*ItemDTO, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}
	if dto.Brand != nil {
		updates["brand"] = *dto.Brand
	}
	if dto.Vintage != nil {
		updates["vintage"] = *dto.Vintage
	}
	if dto.Region != nil {
		updates["region"] = *dto.Region
	}
	if dto.Country != nil {
		updates["country"] = *dto.Country
	}
	if dto.ABV != nil {
		updates["abv"] = *dto.ABV
	}
	if dto.Quantity != nil {
		updates["quantity"] = *dto.Quantity
	}
	if dto.SpaceUnits != nil {
		updates["space_units"] = *dto.SpaceUnits
	}
	if dto.PreservationMode != nil {
		if !enums.PreservationMode(*dto.PreservationMode).IsValid() {
			return nil, apperrors.New(apperrors.CodeValidation, "invalid preservation_mode")
		}
		updates["preservation_mode"] = *dto.PreservationMode
	}
	if dto.PurchasePrice != nil {
		updates["purchase_price"] = *dto.PurchasePrice
	}
	if dto.RetailPrice != nil {
		updates["retail_price"] = *dto.RetailPrice
	}
	if dto.PurchaseDate != nil {
		parsed, err := time.ParseInLocation(dateLayout, *dto.PurchaseDate, s.loc)
		if err != nil {
			return nil, apperrors.New(apperrors.CodeValidation, "purchase_date must be YYYY-MM-DD")
		}
		updates["purchase_date"] = parsed
	}
	if dto.StorageLocation != nil {
		updates["storage_location"] = *dto.StorageLocation
	}
	if dto.Rating != nil {
		updates["rating"] = *dto.Rating
	}
	if dto.FlavorTags != nil {
		updates["flavor_tags"] = pq.StringArray(dto.FlavorTags)
	}
	if dto.Notes != nil {
		updates["notes"] = *dto.Notes
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, itemID, updates); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

// Delete removes an owned item and drops any pending reminder for it.
func (s *Service) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.scheduler.CancelOpenedBottleReminder(itemID, userID)
	return nil
}

// Open marks an item opened: it stamps opened_at (once) and the drink-by
// date, then registers the one-shot reminder. Reminder registration is best
// effort and never fails the state change.
func (s *Service) Open(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error) {
	var opened *models.WineItem
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.txFactory(tx)
		item, err := repo.FindOwned(ctx, itemID, userID)
		if err != nil {
			return mapNotFound(err)
		}
		if item.Status != enums.ItemStatusActive {
			return apperrors.New(apperrors.CodeConflict, "item is no longer active")
		}

		now := s.now()
		openedAt := item.OpenedAt
		if openedAt == nil {
			openedAt = &now
		}
		drinkBy := shelflife.DrinkBy(item.Category, item.PreservationMode, openedAt.In(s.loc))

		updates := map[string]any{
			"bottle_status": enums.BottleStatusOpened,
			"opened_at":     *openedAt,
			"drink_by":      drinkBy,
		}
		if err := repo.Update(ctx, item.ID, updates); err != nil {
			return fmt.Errorf("stamp open state: %w", err)
		}

		item.BottleStatus = enums.BottleStatusOpened
		item.OpenedAt = openedAt
		item.DrinkBy = &drinkBy
		opened = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.registerReminder(ctx, userID, *opened)
	return FromModel(opened), nil
}

// UpdateStatus moves an item through its lifecycle. Leaving the active state
// cancels any pending one-shot reminder.
func (s *Service) UpdateStatus(ctx context.Context, userID, itemID uuid.UUID, dto UpdateStatusDTO) (*ItemDTO, error) {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	status, err := enums.ParseItemStatus(dto.Status)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid status")
	}

	updates := map[string]any{
		"status":            status,
		"status_changed_at": s.now().UTC(),
	}
	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}

	if status != enums.ItemStatusActive {
		s.scheduler.CancelOpenedBottleReminder(itemID, userID)
	}

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

// UpdateRemaining adjusts the fill level of an opened bottle.
func (s *Service) UpdateRemaining(ctx context.Context, userID, itemID uuid.UUID, dto UpdateRemainingDTO) (*ItemDTO, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.BottleStatus != enums.BottleStatusOpened {
		return nil, apperrors.New(apperrors.CodeValidation, "item is not opened")
	}
	amount, err := enums.ParseRemainingAmount(dto.RemainingAmount)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invalid remaining_amount")
	}

	updates := map[string]any{"remaining_amount": amount}
	// An empty bottle leaves the active inventory.
	if amount == enums.RemainingEmpty {
		updates["status"] = enums.ItemStatusConsumed
		updates["status_changed_at"] = s.now().UTC()
	}

	if err := s.repo.Update(ctx, itemID, updates); err != nil {
		return nil, fmt.Errorf("update remaining amount: %w", err)
	}
	if amount == enums.RemainingEmpty {
		s.scheduler.CancelOpenedBottleReminder(itemID, userID)
	}

	item, err = s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

// Remaining reports the days left before the item's drink-by date.
func (s *Service) Remaining(ctx context.Context, userID, itemID uuid.UUID) (*RemainingDTO, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	out := &RemainingDTO{ItemID: item.ID}
	if item.DrinkBy == nil {
		return out, nil
	}
	days := reminders.DaysRemaining(*item.DrinkBy, s.now(), s.loc)
	out.DrinkBy = formatDate(item.DrinkBy)
	out.DaysRemaining = &days
	out.PastDue = days < 0
	return out, nil
}

func (s *Service) registerReminder(ctx context.Context, userID uuid.UUID, item models.WineItem) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "open reminder: load user failed", err)
		return
	}
	prefs, err := s.settings.ForUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "open reminder: load settings failed", err)
			return
		}
		prefs = &models.NotificationSettings{OpenedReminderEnabled: true, NotifyTime: "09:00"}
	}
	s.scheduler.ScheduleOpenedBottleReminder(ctx, item, *user, *prefs)
}

func (s *Service) checkCellarOwnership(ctx context.Context, userID, cellarID uuid.UUID) error {
	cellar, err := s.cellars.FindByID(ctx, cellarID)
	if err != nil {
		return mapNotFound(err)
	}
	if cellar.UserID != userID {
		return apperrors.New(apperrors.CodeNotFound, "cellar not found")
	}
	return nil
}

func (s *Service) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.WineItem, error) {
	item, err := s.repo.FindOwned(ctx, itemID, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return item, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.New(apperrors.CodeNotFound, "resource not found")
	}
	return err
}
