package middleware

import (
	"context"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

type contextKey string

const userContextKey contextKey = "current_user"

// WithUser stores the authenticated user on the request context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
