package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fakeVerifier struct {
	profile *line.Profile
	err     error
	token   string
}

func (f *fakeVerifier) Verify(ctx context.Context, accessToken string) (*line.Profile, error) {
	f.token = accessToken
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeResolver struct {
	user *models.User
	err  error
}

func (f *fakeResolver) ResolveFromProfile(ctx context.Context, profile line.Profile) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cellars", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	handler := Auth(newTestLogger(), &fakeVerifier{}, &fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest(""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_RejectedTokenReturns401(t *testing.T) {
	verifier := &fakeVerifier{err: line.ErrTokenRejected}
	handler := Auth(newTestLogger(), verifier, &fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest("bad-token"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if verifier.token != "bad-token" {
		t.Fatalf("verifier saw token %q", verifier.token)
	}
}

func TestAuth_VerifierOutageReturns503(t *testing.T) {
	verifier := &fakeVerifier{err: fmt.Errorf("line api timeout")}
	handler := Auth(newTestLogger(), verifier, &fakeResolver{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest("token"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAuth_ValidTokenPutsUserInContext(t *testing.T) {
	userID := uuid.New()
	verifier := &fakeVerifier{profile: &line.Profile{UserID: "U1", DisplayName: "Ming"}}
	resolver := &fakeResolver{user: &models.User{ID: userID, LineUserID: "U1"}}

	var seen *models.User
	handler := Auth(newTestLogger(), verifier, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest("good-token"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen == nil || seen.ID != userID {
		t.Fatal("authenticated user missing from context")
	}
}

func TestBearerToken_ParsesHeaderShapes(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := bearerToken(req); got != tc.want {
			t.Fatalf("header %q: got %q, want %q", tc.header, got, tc.want)
		}
	}
}
