package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/internal/notify"
	"github.com/cellarline/cellarline-backend/internal/reminders"
	"github.com/cellarline/cellarline-backend/internal/users"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const (
	defaultWarningWindowDays = 7
	defaultDigestItemLimit   = 5
	defaultSweepTolerance    = 15 * time.Minute
)

type drinkByRecipientReader interface {
	FindRecipientsWithDrinkByReminder(ctx context.Context) ([]users.ReminderRecipient, error)
}

type sweepItemReader interface {
	FindActiveOpenedItems(ctx context.Context, userID uuid.UUID) ([]models.WineItem, error)
}

type digestSender interface {
	SendDrinkByDigest(ctx context.Context, user models.User, entries []notify.DigestEntry, overflow int) error
}

// DrinkBySweepJobParams configure the daily drink-by sweep.
type DrinkBySweepJobParams struct {
	Logger     *logger.Logger
	Recipients drinkByRecipientReader
	Items      sweepItemReader
	Notifier   digestSender
	Location   *time.Location
	Tolerance  time.Duration
	ItemLimit  int
	WindowDays int
}

// NewDrinkBySweepJob builds the daily sweep that batches drink-by reminders
// per user.
func NewDrinkBySweepJob(params DrinkBySweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Recipients == nil {
		return nil, fmt.Errorf("recipients reader required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("items reader required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Location == nil {
		return nil, fmt.Errorf("reference timezone required")
	}
	tolerance := params.Tolerance
	if tolerance <= 0 {
		tolerance = defaultSweepTolerance
	}
	itemLimit := params.ItemLimit
	if itemLimit <= 0 {
		itemLimit = defaultDigestItemLimit
	}
	windowDays := params.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWarningWindowDays
	}
	return &drinkBySweepJob{
		logg:       params.Logger,
		recipients: params.Recipients,
		items:      params.Items,
		notifier:   params.Notifier,
		loc:        params.Location,
		tolerance:  tolerance,
		itemLimit:  itemLimit,
		windowDays: windowDays,
		now:        time.Now,
	}, nil
}

type drinkBySweepJob struct {
	logg       *logger.Logger
	recipients drinkByRecipientReader
	items      sweepItemReader
	notifier   digestSender
	loc        *time.Location
	tolerance  time.Duration
	itemLimit  int
	windowDays int
	now        func() time.Time
}

func (j *drinkBySweepJob) Name() string { return "drinkby-sweep" }

// Run walks every user with the drink-by reminder enabled and pushes one
// consolidated digest to those whose preferred time is near. Failures are
// isolated per user: one broken recipient never starves the rest.
func (j *drinkBySweepJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)

	recipients, err := j.recipients.FindRecipientsWithDrinkByReminder(ctx)
	if err != nil {
		return fmt.Errorf("load reminder recipients: %w", err)
	}

	notified := 0
	for _, recipient := range recipients {
		if j.sweepUser(ctx, recipient, now) {
			notified++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"recipients": len(recipients),
		"notified":   notified,
	})
	j.logg.Info(logCtx, "drink-by sweep complete")
	return nil
}

func (j *drinkBySweepJob) sweepUser(ctx context.Context, recipient users.ReminderRecipient, now time.Time) bool {
	userCtx := j.logg.WithUserID(ctx, recipient.User.ID.String())

	pref, err := reminders.ParseNotifyTime(recipient.Settings.NotifyTime)
	if err != nil {
		j.logg.Warn(j.logg.WithField(userCtx, "notify_time", recipient.Settings.NotifyTime), "invalid notify time, using default")
		pref = reminders.NotifyTime{Hour: 9}
	}
	if !reminders.WithinTolerance(now, pref, j.tolerance, j.loc) {
		return false
	}

	items, err := j.items.FindActiveOpenedItems(ctx, recipient.User.ID)
	if err != nil {
		j.logg.Error(userCtx, "sweep: load items failed", err)
		return false
	}

	window := recipient.Settings.DrinkByWindowDays
	if window <= 0 {
		window = j.windowDays
	}

	var entries []notify.DigestEntry
	for _, item := range items {
		if item.DrinkBy == nil {
			continue
		}
		days := reminders.DaysRemaining(*item.DrinkBy, now, j.loc)
		if days <= window {
			entries = append(entries, notify.DigestEntry{Name: item.Name, DaysRemaining: days})
		}
	}
	if len(entries) == 0 {
		return false
	}

	overflow := 0
	if len(entries) > j.itemLimit {
		overflow = len(entries) - j.itemLimit
		entries = entries[:j.itemLimit]
	}

	if err := j.notifier.SendDrinkByDigest(ctx, recipient.User, entries, overflow); err != nil {
		j.logg.Error(userCtx, "sweep: digest dispatch failed", err)
		return false
	}
	return true
}
