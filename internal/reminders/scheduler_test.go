package reminders

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type fakeUpsert struct {
	key    JobKey
	fireAt time.Time
	fire   func()
}

type fakeJobStore struct {
	upserts []fakeUpsert
	cancels []JobKey
}

func (f *fakeJobStore) Upsert(key JobKey, fireAt time.Time, fire func()) {
	f.upserts = append(f.upserts, fakeUpsert{key: key, fireAt: fireAt, fire: fire})
}

func (f *fakeJobStore) Cancel(key JobKey) { f.cancels = append(f.cancels, key) }

func (f *fakeJobStore) Len() int { return len(f.upserts) }

type fakeItemReader struct {
	item *models.WineItem
	err  error
}

func (f *fakeItemReader) FindItem(ctx context.Context, itemID uuid.UUID) (*models.WineItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.item, nil
}

type sentReminder struct {
	user          models.User
	item          models.WineItem
	daysRemaining int
}

type fakeOpenedNotifier struct {
	sent []sentReminder
	err  error
}

func (f *fakeOpenedNotifier) SendOpenedReminder(ctx context.Context, user models.User, item models.WineItem, daysRemaining int) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReminder{user: user, item: item, daysRemaining: daysRemaining})
	return nil
}

type schedulerTest struct {
	scheduler *Scheduler
	store     *fakeJobStore
	items     *fakeItemReader
	notifier  *fakeOpenedNotifier
}

func newSchedulerTest(t *testing.T) *schedulerTest {
	t.Helper()
	store := &fakeJobStore{}
	items := &fakeItemReader{}
	notifier := &fakeOpenedNotifier{}
	scheduler, err := NewScheduler(SchedulerParams{
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Store:    store,
		Items:    items,
		Notifier: notifier,
		Location: taipei,
	})
	require.NoError(t, err)
	return &schedulerTest{scheduler: scheduler, store: store, items: items, notifier: notifier}
}

func openedItem(drinkBy time.Time) models.WineItem {
	openedAt := drinkBy.AddDate(0, 0, -730)
	return models.WineItem{
		ID:           uuid.New(),
		Name:         "Islay single malt",
		Category:     "whiskey",
		BottleStatus: enums.BottleStatusOpened,
		Status:       enums.ItemStatusActive,
		OpenedAt:     &openedAt,
		DrinkBy:      &drinkBy,
	}
}

func defaultPrefs() models.NotificationSettings {
	return models.NotificationSettings{OpenedReminderEnabled: true, NotifyTime: "09:00"}
}

func TestScheduler_FireAtIsLeadDaysBeforeDrinkBy(t *testing.T) {
	h := newSchedulerTest(t)
	h.scheduler.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, taipei) }

	drinkBy := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	item := openedItem(drinkBy)
	user := models.User{ID: uuid.New()}

	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())

	require.Len(t, h.store.upserts, 1)
	job := h.store.upserts[0]
	assert.Equal(t, JobKey{ItemID: item.ID, UserID: user.ID}, job.key)
	assert.Equal(t, time.Date(2027, 1, 7, 9, 0, 0, 0, taipei), job.fireAt)
}

func TestScheduler_PastFireTimeBumpsToTomorrow(t *testing.T) {
	h := newSchedulerTest(t)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, taipei)
	h.scheduler.now = func() time.Time { return now }

	// Drink-by in two days, so drinkBy-3d at 09:00 is already behind us.
	drinkBy := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	item := openedItem(drinkBy)
	user := models.User{ID: uuid.New()}

	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())

	require.Len(t, h.store.upserts, 1)
	assert.Equal(t, time.Date(2026, 1, 11, 9, 0, 0, 0, taipei), h.store.upserts[0].fireAt)
}

func TestScheduler_SkipsWithoutStampedDates(t *testing.T) {
	h := newSchedulerTest(t)
	user := models.User{ID: uuid.New()}

	item := openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC))
	item.DrinkBy = nil
	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())

	item = openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC))
	item.OpenedAt = nil
	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())

	assert.Empty(t, h.store.upserts)
}

func TestScheduler_SkipsWhenPreferenceDisabled(t *testing.T) {
	h := newSchedulerTest(t)
	prefs := defaultPrefs()
	prefs.OpenedReminderEnabled = false

	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)), models.User{ID: uuid.New()}, prefs)

	assert.Empty(t, h.store.upserts)
}

func TestScheduler_InvalidNotifyTimeFallsBackToNine(t *testing.T) {
	h := newSchedulerTest(t)
	h.scheduler.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, taipei) }

	prefs := defaultPrefs()
	prefs.NotifyTime = "not a time"
	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)), models.User{ID: uuid.New()}, prefs)

	require.Len(t, h.store.upserts, 1)
	assert.Equal(t, 9, h.store.upserts[0].fireAt.Hour())
}

func TestScheduler_FireDeliversWithRecomputedDays(t *testing.T) {
	h := newSchedulerTest(t)
	h.scheduler.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, taipei) }

	drinkBy := time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC)
	item := openedItem(drinkBy)
	user := models.User{ID: uuid.New(), LineUserID: "U123"}
	h.items.item = &item

	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())
	require.Len(t, h.store.upserts, 1)

	// Fire late: the job recomputes remaining days instead of reporting the
	// value captured at scheduling time.
	h.scheduler.now = func() time.Time { return time.Date(2027, 1, 12, 9, 0, 0, 0, taipei) }
	h.store.upserts[0].fire()

	require.Len(t, h.notifier.sent, 1)
	sent := h.notifier.sent[0]
	assert.Equal(t, user.ID, sent.user.ID)
	assert.Equal(t, item.ID, sent.item.ID)
	assert.Equal(t, -2, sent.daysRemaining)
}

func TestScheduler_FireSkipsIneligibleItem(t *testing.T) {
	for _, mutate := range []struct {
		name string
		fn   func(*models.WineItem)
	}{
		{"consumed", func(i *models.WineItem) { i.Status = enums.ItemStatusConsumed }},
		{"sold", func(i *models.WineItem) { i.Status = enums.ItemStatusSold }},
		{"no drink-by", func(i *models.WineItem) { i.DrinkBy = nil }},
	} {
		t.Run(mutate.name, func(t *testing.T) {
			h := newSchedulerTest(t)
			item := openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC))
			user := models.User{ID: uuid.New()}

			h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())
			require.Len(t, h.store.upserts, 1)

			changed := item
			mutate.fn(&changed)
			h.items.item = &changed
			h.store.upserts[0].fire()

			assert.Empty(t, h.notifier.sent)
		})
	}
}

func TestScheduler_FireSwallowsReloadAndDispatchErrors(t *testing.T) {
	h := newSchedulerTest(t)
	item := openedItem(time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC))
	user := models.User{ID: uuid.New()}

	h.scheduler.ScheduleOpenedBottleReminder(context.Background(), item, user, defaultPrefs())
	require.Len(t, h.store.upserts, 1)

	h.items.err = fmt.Errorf("db down")
	assert.NotPanics(t, func() { h.store.upserts[0].fire() })

	h.items.err = nil
	h.items.item = &item
	h.notifier.err = fmt.Errorf("push failed")
	assert.NotPanics(t, func() { h.store.upserts[0].fire() })
	assert.Empty(t, h.notifier.sent)
}

func TestScheduler_CancelDropsPendingJob(t *testing.T) {
	h := newSchedulerTest(t)
	itemID, userID := uuid.New(), uuid.New()
	h.scheduler.CancelOpenedBottleReminder(itemID, userID)
	require.Len(t, h.store.cancels, 1)
	assert.Equal(t, JobKey{ItemID: itemID, UserID: userID}, h.store.cancels[0])
}
