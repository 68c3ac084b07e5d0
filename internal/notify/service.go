// Package notify formats and delivers outbound LINE messages and records
// each delivery in the notification log.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/enums"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type pusher interface {
	PushText(ctx context.Context, lineUserID, text string) error
}

type deliveryLog interface {
	Create(ctx context.Context, row *models.Notification) error
}

// DigestEntry is one line of the consolidated drink-by digest.
type DigestEntry struct {
	Name          string
	DaysRemaining int
}

// ServiceParams configure the notify service.
type ServiceParams struct {
	Logger *logger.Logger
	Pusher pusher
	Log    deliveryLog
}

// Service pushes messages to LINE users. Delivery-log writes are best effort
// and never fail a push that already went out.
type Service struct {
	logg   *logger.Logger
	pusher pusher
	log    deliveryLog
	now    func() time.Time
}

// NewService builds a notify service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pusher == nil {
		return nil, fmt.Errorf("pusher required")
	}
	if params.Log == nil {
		return nil, fmt.Errorf("delivery log required")
	}
	return &Service{
		logg:   params.Logger,
		pusher: params.Pusher,
		log:    params.Log,
		now:    time.Now,
	}, nil
}

// SendDrinkByDigest pushes the consolidated daily reminder. Entries are
// already truncated by the caller; overflow is the count of items beyond the
// displayed ones.
func (s *Service) SendDrinkByDigest(ctx context.Context, user models.User, entries []DigestEntry, overflow int) error {
	if len(entries) == 0 {
		return nil
	}
	body := formatDigest(entries, overflow)
	return s.deliver(ctx, user, enums.NotificationKindDrinkByDigest, "Drink-by reminder", body)
}

// SendOpenedReminder pushes the single-item reminder registered when a
// bottle was opened.
func (s *Service) SendOpenedReminder(ctx context.Context, user models.User, item models.WineItem, daysRemaining int) error {
	body := fmt.Sprintf("You opened %s. %s.", item.Name, formatRemaining(daysRemaining))
	return s.deliver(ctx, user, enums.NotificationKindOpenedReminder, "Opened bottle reminder", body)
}

// SendSpaceWarning pushes a cellar capacity warning.
func (s *Service) SendSpaceWarning(ctx context.Context, user models.User, cellarName string, usedPct, threshold int) error {
	body := fmt.Sprintf("Cellar %q is %d%% full (warning threshold %d%%). Consider opening a bottle or expanding capacity.", cellarName, usedPct, threshold)
	return s.deliver(ctx, user, enums.NotificationKindSpaceWarning, "Cellar space warning", body)
}

func (s *Service) deliver(ctx context.Context, user models.User, kind enums.NotificationKind, title, body string) error {
	if user.LineUserID == "" {
		return fmt.Errorf("user %s has no messaging identity", user.ID)
	}
	text := title + "\n" + body
	if err := s.pusher.PushText(ctx, user.LineUserID, text); err != nil {
		return fmt.Errorf("push %s: %w", kind, err)
	}

	row := &models.Notification{
		UserID: user.ID,
		Kind:   kind,
		Title:  title,
		Body:   body,
		SentAt: s.now().UTC(),
	}
	if err := s.log.Create(ctx, row); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"user_id": user.ID.String(),
			"kind":    string(kind),
		})
		s.logg.Error(logCtx, "recording notification failed", err)
	}
	return nil
}

func formatDigest(entries []DigestEntry, overflow int) string {
	var b strings.Builder
	b.WriteString("These bottles are close to their drink-by date:")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("\n- %s: %s", e.Name, formatRemaining(e.DaysRemaining)))
	}
	if overflow > 0 {
		b.WriteString(fmt.Sprintf("\nand %d more", overflow))
	}
	return b.String()
}

func formatRemaining(days int) string {
	switch {
	case days > 1:
		return fmt.Sprintf("%d days left", days)
	case days == 1:
		return "1 day left"
	case days == 0:
		return "drink it today"
	case days == -1:
		return "past due by 1 day"
	default:
		return fmt.Sprintf("past due by %d days", -days)
	}
}
