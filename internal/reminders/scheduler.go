// Package reminders schedules one-shot drink-by reminders for opened bottles
// and holds the calendar helpers shared with the daily sweep.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const (
	defaultLeadDays    = 3
	defaultFireTimeout = 30 * time.Second
)

type itemReader interface {
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.WineItem, error)
}

type openedNotifier interface {
	SendOpenedReminder(ctx context.Context, user models.User, item models.WineItem, daysRemaining int) error
}

// SchedulerParams configure the one-shot reminder scheduler.
type SchedulerParams struct {
	Logger      *logger.Logger
	Store       JobStore
	Items       itemReader
	Notifier    openedNotifier
	Location    *time.Location
	LeadDays    int
	FireTimeout time.Duration
}

// Scheduler registers per-item reminder jobs anchored to the drink-by date.
// Everything it does is best effort: the open action that triggers it never
// fails because a reminder could not be registered or delivered.
type Scheduler struct {
	logg        *logger.Logger
	store       JobStore
	items       itemReader
	notifier    openedNotifier
	loc         *time.Location
	leadDays    int
	fireTimeout time.Duration
	now         func() time.Time
}

// NewScheduler builds a scheduler.
func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("job store required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("item reader required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Location == nil {
		return nil, fmt.Errorf("reference timezone required")
	}
	leadDays := params.LeadDays
	if leadDays <= 0 {
		leadDays = defaultLeadDays
	}
	fireTimeout := params.FireTimeout
	if fireTimeout <= 0 {
		fireTimeout = defaultFireTimeout
	}
	return &Scheduler{
		logg:        params.Logger,
		store:       params.Store,
		items:       params.Items,
		notifier:    params.Notifier,
		loc:         params.Location,
		leadDays:    leadDays,
		fireTimeout: fireTimeout,
		now:         time.Now,
	}, nil
}

// ScheduleOpenedBottleReminder registers (or replaces) the one-shot reminder
// for an item that was just marked opened.
//
// The fire time is the drink-by date minus the lead, at the user's preferred
// notify time in the reference timezone. A fire time already in the past is
// bumped to tomorrow at the preferred time; it never fires immediately and is
// never dropped.
func (s *Scheduler) ScheduleOpenedBottleReminder(ctx context.Context, item models.WineItem, user models.User, prefs models.NotificationSettings) {
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"item_id": item.ID.String(),
		"user_id": user.ID.String(),
	})

	if item.OpenedAt == nil || item.DrinkBy == nil {
		s.logg.Info(logCtx, "skipping opened reminder: item not stamped with opened/drink-by")
		return
	}
	if !prefs.OpenedReminderEnabled {
		s.logg.Info(logCtx, "skipping opened reminder: disabled in settings")
		return
	}

	pref, err := ParseNotifyTime(prefs.NotifyTime)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "notify_time", prefs.NotifyTime), "invalid notify time, using default")
		pref = NotifyTime{Hour: 9}
	}

	now := s.now().In(s.loc)
	dy, dm, dd := item.DrinkBy.Date()
	fireDay := time.Date(dy, dm, dd, 0, 0, 0, 0, s.loc).AddDate(0, 0, -s.leadDays)
	fireAt := pref.On(fireDay)
	if !fireAt.After(now) {
		fireAt = pref.On(now.AddDate(0, 0, 1))
	}

	key := JobKey{ItemID: item.ID, UserID: user.ID}
	s.store.Upsert(key, fireAt, func() {
		s.fire(key, user)
	})

	s.logg.Info(s.logg.WithField(logCtx, "fire_at", fireAt.Format(time.RFC3339)), "opened reminder scheduled")
}

// CancelOpenedBottleReminder drops any pending job for the item.
func (s *Scheduler) CancelOpenedBottleReminder(itemID, userID uuid.UUID) {
	s.store.Cancel(JobKey{ItemID: itemID, UserID: userID})
}

// fire delivers a single-item reminder. It re-reads the item so a job that
// outlived a status change stays silent, and recomputes days remaining so a
// late-firing job reports accurate numbers.
func (s *Scheduler) fire(key JobKey, user models.User) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fireTimeout)
	defer cancel()

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"item_id": key.ItemID.String(),
		"user_id": key.UserID.String(),
	})

	item, err := s.items.FindItem(ctx, key.ItemID)
	if err != nil {
		s.logg.Error(logCtx, "opened reminder: reload item failed", err)
		return
	}
	if item.Status != enums.ItemStatusActive || item.BottleStatus != enums.BottleStatusOpened || item.DrinkBy == nil {
		s.logg.Info(logCtx, "opened reminder: item no longer eligible, skipping")
		return
	}

	daysRemaining := DaysRemaining(*item.DrinkBy, s.now(), s.loc)
	if err := s.notifier.SendOpenedReminder(ctx, user, *item, daysRemaining); err != nil {
		s.logg.Error(logCtx, "opened reminder dispatch failed", err)
		return
	}
	s.logg.Info(logCtx, "opened reminder delivered")
}
