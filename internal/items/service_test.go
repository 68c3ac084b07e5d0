package items

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
	apperrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

var taipei = time.FixedZone("UTC+8", 8*60*60)

type fakeItemStore struct {
	items   map[uuid.UUID]*models.WineItem
	owner   uuid.UUID
	updates []map[string]any
}

func newFakeItemStore(owner uuid.UUID) *fakeItemStore {
	return &fakeItemStore{items: map[uuid.UUID]*models.WineItem{}, owner: owner}
}

func (f *fakeItemStore) Create(ctx context.Context, item *models.WineItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemStore) FindOwned(ctx context.Context, itemID, userID uuid.UUID) (*models.WineItem, error) {
	item, ok := f.items[itemID]
	if !ok || userID != f.owner {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemStore) ListByCellar(ctx context.Context, cellarID uuid.UUID, status enums.ItemStatus, bottleStatus enums.BottleStatus) ([]models.WineItem, error) {
	var out []models.WineItem
	for _, item := range f.items {
		if item.CellarID != cellarID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		if bottleStatus != "" && item.BottleStatus != bottleStatus {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (f *fakeItemStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.updates = append(f.updates, updates)
	item, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "bottle_status":
			item.BottleStatus = value.(enums.BottleStatus)
		case "opened_at":
			at := value.(time.Time)
			item.OpenedAt = &at
		case "drink_by":
			at := value.(time.Time)
			item.DrinkBy = &at
		case "status":
			item.Status = value.(enums.ItemStatus)
		case "remaining_amount":
			item.RemainingAmount = value.(enums.RemainingAmount)
		}
	}
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeCellarReader struct {
	cellars map[uuid.UUID]*models.WineCellar
}

func (f *fakeCellarReader) FindByID(ctx context.Context, id uuid.UUID) (*models.WineCellar, error) {
	cellar, ok := f.cellars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cellar, nil
}

type fakeUserReader struct {
	user *models.User
	err  error
}

func (f *fakeUserReader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

type fakeSettingsReader struct {
	settings *models.NotificationSettings
	err      error
}

func (f *fakeSettingsReader) ForUser(ctx context.Context, userID uuid.UUID) (*models.NotificationSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

type scheduledCall struct {
	item  models.WineItem
	user  models.User
	prefs models.NotificationSettings
}

type fakeScheduler struct {
	scheduled []scheduledCall
	canceled  []uuid.UUID
}

func (f *fakeScheduler) ScheduleOpenedBottleReminder(ctx context.Context, item models.WineItem, user models.User, prefs models.NotificationSettings) {
	f.scheduled = append(f.scheduled, scheduledCall{item: item, user: user, prefs: prefs})
}

func (f *fakeScheduler) CancelOpenedBottleReminder(itemID, userID uuid.UUID) {
	f.canceled = append(f.canceled, itemID)
}

type serviceTest struct {
	svc       *Service
	store     *fakeItemStore
	cellars   *fakeCellarReader
	users     *fakeUserReader
	settings  *fakeSettingsReader
	scheduler *fakeScheduler
	userID    uuid.UUID
	cellarID  uuid.UUID
}

func newServiceTest(t *testing.T) *serviceTest {
	t.Helper()
	userID := uuid.New()
	cellarID := uuid.New()
	store := newFakeItemStore(userID)
	cellars := &fakeCellarReader{cellars: map[uuid.UUID]*models.WineCellar{
		cellarID: {ID: cellarID, UserID: userID, Name: "Home cellar", TotalCapacity: 50},
	}}
	users := &fakeUserReader{user: &models.User{ID: userID, LineUserID: "U1"}}
	settings := &fakeSettingsReader{settings: &models.NotificationSettings{
		UserID:                userID,
		OpenedReminderEnabled: true,
		NotifyTime:            "09:00",
	}}
	scheduler := &fakeScheduler{}

	svc, err := NewService(ServiceParams{
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:        fakeTxRunner{},
		Repo:      store,
		TxFactory: func(tx *gorm.DB) itemStore { return store },
		Cellars:   cellars,
		Users:     users,
		Settings:  settings,
		Scheduler: scheduler,
		Location:  taipei,
	})
	require.NoError(t, err)

	return &serviceTest{
		svc:       svc,
		store:     store,
		cellars:   cellars,
		users:     users,
		settings:  settings,
		scheduler: scheduler,
		userID:    userID,
		cellarID:  cellarID,
	}
}

func (h *serviceTest) seedItem(t *testing.T, mutate func(*models.WineItem)) *models.WineItem {
	t.Helper()
	item := &models.WineItem{
		ID:               uuid.New(),
		CellarID:         h.cellarID,
		Name:             "Margaux 2015",
		Category:         "red wine",
		Quantity:         1,
		SpaceUnits:       1,
		BottleStatus:     enums.BottleStatusUnopened,
		PreservationMode: enums.PreservationModeImmediate,
		RemainingAmount:  enums.RemainingFull,
		Status:           enums.ItemStatusActive,
	}
	if mutate != nil {
		mutate(item)
	}
	h.store.items[item.ID] = item
	return item
}

func TestOpen_StampsDrinkByAndSchedulesReminder(t *testing.T) {
	h := newServiceTest(t)
	h.svc.now = func() time.Time { return time.Date(2026, 1, 10, 20, 0, 0, 0, taipei) }
	item := h.seedItem(t, nil)

	dto, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.BottleStatusOpened, dto.BottleStatus)
	require.NotNil(t, dto.OpenedAt)
	require.NotNil(t, dto.DrinkBy)
	assert.Equal(t, "2026-01-15", *dto.DrinkBy)

	require.Len(t, h.scheduler.scheduled, 1)
	call := h.scheduler.scheduled[0]
	assert.Equal(t, item.ID, call.item.ID)
	assert.Equal(t, h.userID, call.user.ID)
	assert.True(t, call.prefs.OpenedReminderEnabled)
}

func TestOpen_WhiskeyGetsLongShelfLife(t *testing.T) {
	h := newServiceTest(t)
	h.svc.now = func() time.Time { return time.Date(2026, 1, 10, 20, 0, 0, 0, taipei) }
	item := h.seedItem(t, func(i *models.WineItem) { i.Category = "whiskey" })

	dto, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.DrinkBy)
	assert.Equal(t, "2027-01-10", *dto.DrinkBy)
}

func TestOpen_ReopenKeepsOpenedAt(t *testing.T) {
	h := newServiceTest(t)
	firstOpen := time.Date(2026, 1, 5, 12, 0, 0, 0, taipei)
	item := h.seedItem(t, func(i *models.WineItem) {
		i.BottleStatus = enums.BottleStatusOpened
		i.OpenedAt = &firstOpen
	})
	h.svc.now = func() time.Time { return time.Date(2026, 1, 10, 20, 0, 0, 0, taipei) }

	dto, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.OpenedAt)
	assert.True(t, dto.OpenedAt.Equal(firstOpen))
	// Drink-by is anchored to the original opening date.
	require.NotNil(t, dto.DrinkBy)
	assert.Equal(t, "2026-01-10", *dto.DrinkBy)
}

func TestOpen_InactiveItemConflicts(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, func(i *models.WineItem) { i.Status = enums.ItemStatusConsumed })

	_, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeConflict, typed.Code())
	assert.Empty(t, h.scheduler.scheduled)
}

func TestOpen_MissingSettingsUsesDefaults(t *testing.T) {
	h := newServiceTest(t)
	h.settings.err = gorm.ErrRecordNotFound
	item := h.seedItem(t, nil)

	_, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	require.Len(t, h.scheduler.scheduled, 1)
	assert.True(t, h.scheduler.scheduled[0].prefs.OpenedReminderEnabled)
	assert.Equal(t, "09:00", h.scheduler.scheduled[0].prefs.NotifyTime)
}

func TestOpen_UserLoadFailureSkipsReminderButSucceeds(t *testing.T) {
	h := newServiceTest(t)
	h.users.err = gorm.ErrRecordNotFound
	item := h.seedItem(t, nil)

	dto, err := h.svc.Open(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BottleStatusOpened, dto.BottleStatus)
	assert.Empty(t, h.scheduler.scheduled)
}

func TestUpdateStatus_LeavingActiveCancelsReminder(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, func(i *models.WineItem) { i.BottleStatus = enums.BottleStatusOpened })

	dto, err := h.svc.UpdateStatus(context.Background(), h.userID, item.ID, UpdateStatusDTO{Status: "consumed"})
	require.NoError(t, err)
	assert.Equal(t, enums.ItemStatusConsumed, dto.Status)
	require.Len(t, h.scheduler.canceled, 1)
	assert.Equal(t, item.ID, h.scheduler.canceled[0])
}

func TestUpdateStatus_StayingActiveKeepsReminder(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, nil)

	_, err := h.svc.UpdateStatus(context.Background(), h.userID, item.ID, UpdateStatusDTO{Status: "active"})
	require.NoError(t, err)
	assert.Empty(t, h.scheduler.canceled)
}

func TestUpdateRemaining_RequiresOpenedBottle(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, nil)

	_, err := h.svc.UpdateRemaining(context.Background(), h.userID, item.ID, UpdateRemainingDTO{RemainingAmount: "1/2"})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeValidation, typed.Code())
}

func TestUpdateRemaining(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, func(i *models.WineItem) { i.BottleStatus = enums.BottleStatusOpened })

	dto, err := h.svc.UpdateRemaining(context.Background(), h.userID, item.ID, UpdateRemainingDTO{RemainingAmount: "1/4"})
	require.NoError(t, err)
	assert.Equal(t, enums.RemainingQuarter, dto.RemainingAmount)
}

func TestUpdateRemaining_EmptyMarksConsumed(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, func(i *models.WineItem) { i.BottleStatus = enums.BottleStatusOpened })

	dto, err := h.svc.UpdateRemaining(context.Background(), h.userID, item.ID, UpdateRemainingDTO{RemainingAmount: "empty"})
	require.NoError(t, err)
	assert.Equal(t, enums.RemainingEmpty, dto.RemainingAmount)
	assert.Equal(t, enums.ItemStatusConsumed, dto.Status)

	require.Len(t, h.scheduler.canceled, 1)
	assert.Equal(t, item.ID, h.scheduler.canceled[0])
}

func TestRemaining_PastDue(t *testing.T) {
	h := newServiceTest(t)
	drinkBy := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	item := h.seedItem(t, func(i *models.WineItem) {
		i.BottleStatus = enums.BottleStatusOpened
		i.DrinkBy = &drinkBy
	})
	h.svc.now = func() time.Time { return time.Date(2026, 1, 10, 8, 0, 0, 0, taipei) }

	dto, err := h.svc.Remaining(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, dto.DaysRemaining)
	assert.Equal(t, -2, *dto.DaysRemaining)
	assert.True(t, dto.PastDue)
}

func TestRemaining_UnopenedHasNoDrinkBy(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, nil)

	dto, err := h.svc.Remaining(context.Background(), h.userID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, dto.DaysRemaining)
	assert.False(t, dto.PastDue)
}

func TestCreate_RejectsForeignCellar(t *testing.T) {
	h := newServiceTest(t)
	otherCellar := uuid.New()
	h.cellars.cellars[otherCellar] = &models.WineCellar{ID: otherCellar, UserID: uuid.New()}

	_, err := h.svc.Create(context.Background(), h.userID, CreateItemDTO{CellarID: otherCellar, Name: "x", Category: "red wine"})
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeNotFound, typed.Code())
}

func TestDelete_CancelsReminder(t *testing.T) {
	h := newServiceTest(t)
	item := h.seedItem(t, nil)

	require.NoError(t, h.svc.Delete(context.Background(), h.userID, item.ID))
	require.Len(t, h.scheduler.canceled, 1)
	assert.Equal(t, item.ID, h.scheduler.canceled[0])
}
