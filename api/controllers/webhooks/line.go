package webhooks

import (
	"context"
	"net/http"

	"github.com/line/line-bot-sdk-go/v7/linebot"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const (
	welcomeMessage = "Welcome to CellarLine! Open the app to register your first bottle. I'll remind you before anything passes its drink-by date."
	helpMessage    = "Manage your cellar from the CellarLine app. I'll message you here when a bottle is close to its drink-by date."
)

type lineMessenger interface {
	ParseWebhook(r *http.Request) ([]*linebot.Event, error)
	ReplyText(ctx context.Context, replyToken, text string) error
	GetProfile(ctx context.Context, lineUserID string) (*line.Profile, error)
}

type identityResolver interface {
	ResolveFromProfile(ctx context.Context, profile line.Profile) (*models.User, error)
}

// LineWebhook handles LINE platform events. Follow events register the user
// and reply with a greeting; text messages get a short help reply. Event
// handling failures never fail the webhook response, otherwise LINE retries
// the whole batch.
func LineWebhook(client lineMessenger, users identityResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "line client unavailable"))
			return
		}

		events, err := client.ParseWebhook(r)
		if err != nil {
			if line.IsInvalidSignature(err) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook signature"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload"))
			return
		}

		for _, event := range events {
			handleLineEvent(ctx, client, users, logg, event)
		}

		responses.WriteSuccess(w, nil)
	}
}

func handleLineEvent(ctx context.Context, client lineMessenger, users identityResolver, logg *logger.Logger, event *linebot.Event) {
	if event == nil || event.Source == nil {
		return
	}

	switch event.Type {
	case linebot.EventTypeFollow:
		if users != nil {
			profile, err := client.GetProfile(ctx, event.Source.UserID)
			if err != nil {
				logError(ctx, logg, "loading follower profile failed", err)
			} else if _, err := users.ResolveFromProfile(ctx, *profile); err != nil {
				logError(ctx, logg, "registering follower failed", err)
			}
		}
		if err := client.ReplyText(ctx, event.ReplyToken, welcomeMessage); err != nil {
			logError(ctx, logg, "welcome reply failed", err)
		}

	case linebot.EventTypeMessage:
		if _, ok := event.Message.(*linebot.TextMessage); !ok {
			return
		}
		if err := client.ReplyText(ctx, event.ReplyToken, helpMessage); err != nil {
			logError(ctx, logg, "help reply failed", err)
		}
	}
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
