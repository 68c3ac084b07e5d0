package users

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/cellarline/cellarline-backend/pkg/db/models"
	"github.com/cellarline/cellarline-backend/pkg/line"
	"github.com/cellarline/cellarline-backend/pkg/logger"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fakeUserStore struct {
	byLineID  map[string]*models.User
	upserted  []*models.User
	upsertErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byLineID: map[string]*models.User{}}
}

func (f *fakeUserStore) FindByLineUserID(ctx context.Context, lineUserID string) (*models.User, error) {
	row, ok := f.byLineID[lineUserID]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return row, nil
}

func (f *fakeUserStore) Upsert(ctx context.Context, user *models.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, user)
	existing, ok := f.byLineID[user.LineUserID]
	if !ok {
		persisted := *user
		persisted.ID = uuid.New()
		f.byLineID[user.LineUserID] = &persisted
		return nil
	}
	existing.DisplayName = user.DisplayName
	existing.PictureURL = user.PictureURL
	return nil
}

type fakeEnsurer struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeEnsurer) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	f.calls = append(f.calls, userID)
	return f.err
}

func newUserService(t *testing.T, store *fakeUserStore, ensurer *fakeEnsurer) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Logger: newTestLogger(), Repo: store, Settings: ensurer})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestResolveFromProfile_CreatesUserAndDefaults(t *testing.T) {
	store := newFakeUserStore()
	ensurer := &fakeEnsurer{}
	svc := newUserService(t, store, ensurer)

	profile := line.Profile{UserID: "U1", DisplayName: "Ming", PictureURL: "https://cdn.example/p.jpg"}
	user, err := svc.ResolveFromProfile(context.Background(), profile)
	if err != nil {
		t.Fatalf("ResolveFromProfile: %v", err)
	}
	if user.LineUserID != "U1" || user.DisplayName != "Ming" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PictureURL == nil || *user.PictureURL != "https://cdn.example/p.jpg" {
		t.Fatal("picture url not carried over")
	}
	if len(ensurer.calls) != 1 || ensurer.calls[0] != user.ID {
		t.Fatalf("defaults not ensured for user: %+v", ensurer.calls)
	}
}

func TestResolveFromProfile_RefreshesExistingUser(t *testing.T) {
	store := newFakeUserStore()
	ensurer := &fakeEnsurer{}
	svc := newUserService(t, store, ensurer)

	first, err := svc.ResolveFromProfile(context.Background(), line.Profile{UserID: "U1", DisplayName: "Old name"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.ResolveFromProfile(context.Background(), line.Profile{UserID: "U1", DisplayName: "New name"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("existing user should keep its ID")
	}
	if second.DisplayName != "New name" {
		t.Fatalf("display name not refreshed: %s", second.DisplayName)
	}
}

func TestResolveFromProfile_UpsertFailurePropagates(t *testing.T) {
	store := newFakeUserStore()
	store.upsertErr = fmt.Errorf("db down")
	svc := newUserService(t, store, &fakeEnsurer{})

	if _, err := svc.ResolveFromProfile(context.Background(), line.Profile{UserID: "U1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveFromProfile_DefaultsFailureIsNonFatal(t *testing.T) {
	store := newFakeUserStore()
	ensurer := &fakeEnsurer{err: fmt.Errorf("settings table locked")}
	svc := newUserService(t, store, ensurer)

	user, err := svc.ResolveFromProfile(context.Background(), line.Profile{UserID: "U1", DisplayName: "Ming"})
	if err != nil {
		t.Fatalf("ResolveFromProfile: %v", err)
	}
	if user == nil {
		t.Fatal("user should still be returned")
	}
}
