package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/internal/notifylog"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

const defaultNotificationPageSize = 20

// NotificationsList returns the user's recent delivered reminders.
func NotificationsList(repo *notifylog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification log unavailable"))
			return
		}

		user, err := currentUser(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := defaultNotificationPageSize
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		rows, err := repo.ListByUser(r.Context(), user.ID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, notifylog.FromModels(rows))
	}
}
