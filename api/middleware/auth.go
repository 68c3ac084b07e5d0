package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cellarline/cellarline-backend/api/responses"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
	pkgerrors "github.com/cellarline/cellarline-backend/pkg/errors"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

type tokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*line.Profile, error)
}

type identityResolver interface {
	ResolveFromProfile(ctx context.Context, profile line.Profile) (*models.User, error)
}

// Auth verifies the LIFF access token on the Authorization header and loads
// the platform user onto the request context.
func Auth(logg *logger.Logger, verifier tokenVerifier, users identityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing access token"))
				return
			}

			profile, err := verifier.Verify(ctx, token)
			if err != nil {
				if errors.Is(err, line.ErrTokenRejected) {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "access token rejected"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "token verification failed"))
				return
			}

			user, err := users.ResolveFromProfile(ctx, *profile)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving user failed"))
				return
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID.String())
			}
			ctx = WithUser(ctx, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
