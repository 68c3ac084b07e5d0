package controllers

import (
	"context"

	"github.com/cellarline/cellarline-backend/api/middleware"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
)

func currentUser(ctx context.Context) (*models.User, error) {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return user, nil
}
