package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/cellarline/cellarline-backend/internal/cellars"
	"github.com/cellarline/cellarline-backend/internal/reminders"
	"github.com/cellarline/cellarline-backend/internal/users"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const defaultSpaceThreshold = 80

type spaceRecipientReader interface {
	FindRecipientsWithSpaceWarning(ctx context.Context) ([]users.ReminderRecipient, error)
}

type usageReader interface {
	UsageByUser(ctx context.Context, userID uuid.UUID) ([]cellars.Usage, error)
}

type spaceSender interface {
	SendSpaceWarning(ctx context.Context, user models.User, cellarName string, usedPct, threshold int) error
}

// SpaceWarningJobParams configure the cellar capacity warning job.
type SpaceWarningJobParams struct {
	Logger     *logger.Logger
	Recipients spaceRecipientReader
	Usage      usageReader
	Notifier   spaceSender
	Location   *time.Location
	Tolerance  time.Duration
}

// NewSpaceWarningJob builds the job that warns users whose cellars are
// nearly full.
func NewSpaceWarningJob(params SpaceWarningJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Recipients == nil {
		return nil, fmt.Errorf("recipients reader required")
	}
	if params.Usage == nil {
		return nil, fmt.Errorf("usage reader required")
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
	return &spaceWarningJob{
		logg:       params.Logger,
		recipients: params.Recipients,
		usage:      params.Usage,
		notifier:   params.Notifier,
		loc:        params.Location,
		tolerance:  tolerance,
		now:        time.Now,
	}, nil
}

type spaceWarningJob struct {
	logg       *logger.Logger
	recipients spaceRecipientReader
	usage      usageReader
	notifier   spaceSender
	loc        *time.Location
	tolerance  time.Duration
	now        func() time.Time
}

func (j *spaceWarningJob) Name() string { return "space-warning" }

func (j *spaceWarningJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)

	recipients, err := j.recipients.FindRecipientsWithSpaceWarning(ctx)
	if err != nil {
		return fmt.Errorf("load space warning recipients: %w", err)
	}

	warned := 0
	var errs []error
	for _, recipient := range recipients {
		n, err := j.warnUser(ctx, recipient, now)
		warned += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"recipients": len(recipients),
		"warnings":   warned,
		"failures":   len(errs),
	})
	j.logg.Info(logCtx, "space warning sweep complete")
	return multierr.Combine(errs...)
}

func (j *spaceWarningJob) warnUser(ctx context.Context, recipient users.ReminderRecipient, now time.Time) (int, error) {
	userCtx := j.logg.WithUserID(ctx, recipient.User.ID.String())

	pref, err := reminders.ParseNotifyTime(recipient.Settings.NotifyTime)
	if err != nil {
		pref = reminders.NotifyTime{Hour: 9}
	}
	if !reminders.WithinTolerance(now, pref, j.tolerance, j.loc) {
		return 0, nil
	}

	usages, err := j.usage.UsageByUser(ctx, recipient.User.ID)
	if err != nil {
		j.logg.Error(userCtx, "space warning: load usage failed", err)
		return 0, fmt.Errorf("usage for %s: %w", recipient.User.ID, err)
	}

	threshold := recipient.Settings.SpaceWarningThreshold
	if threshold <= 0 {
		threshold = defaultSpaceThreshold
	}

	warned := 0
	var errs []error
	for _, usage := range usages {
		pct := cellars.UsedPercent(usage.UsedUnits, usage.Cellar.TotalCapacity)
		if pct < threshold {
			continue
		}
		if err := j.notifier.SendSpaceWarning(ctx, recipient.User, usage.Cellar.Name, pct, threshold); err != nil {
			j.logg.Error(userCtx, "space warning dispatch failed", err)
			errs = append(errs, fmt.Errorf("warn %s about %q: %w", recipient.User.ID, usage.Cellar.Name, err))
			continue
		}
		warned++
	}
	return warned, multierr.Combine(errs...)
}
