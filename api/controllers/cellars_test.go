package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellarline/cellarline-backend/internal/cellars"
	"github.com/cellarline/cellarline-backend/pkg/db/models"
)

type fakeCellarStore struct {
	rows map[uuid.UUID]*models.WineCellar
}

func newFakeCellarStore() *fakeCellarStore {
	return &fakeCellarStore{rows: map[uuid.UUID]*models.WineCellar{}}
}

func (f *fakeCellarStore) Create(ctx context.Context, cellar *models.WineCellar) error {
	cellar.ID = uuid.New()
	copied := *cellar
	f.rows[cellar.ID] = &copied
	return nil
}

func (f *fakeCellarStore) FindByID(ctx context.Context, id uuid.UUID) (*models.WineCellar, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeCellarStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WineCellar, error) {
	var out []models.WineCellar
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeCellarStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "name":
			row.Name = value.(string)
		case "description":
			desc := value.(string)
			row.Description = &desc
		case "total_capacity":
			row.TotalCapacity = value.(int)
		}
	}
	return nil
}

func (f *fakeCellarStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeCellarStore) UsageByUser(ctx context.Context, userID uuid.UUID) ([]cellars.Usage, error) {
	var out []cellars.Usage
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, cellars.Usage{Cellar: *row, UsedUnits: 46})
		}
	}
	return out, nil
}

func cellarsService(t *testing.T) (*cellars.Service, *fakeCellarStore) {
	t.Helper()
	store := newFakeCellarStore()
	svc, err := cellars.NewService(cellars.ServiceParams{Logger: newTestLogger(), Repo: store})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

// routeRequest threads a chi URL param through the request context.
func routeRequest(req *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCellarsCreate_AppliesDefaultCapacity(t *testing.T) {
	svc, store := cellarsService(t)
	user := &models.User{ID: uuid.New(), LineUserID: "U1"}

	rec := httptest.NewRecorder()
	CellarsCreate(svc, newTestLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cellars", `{"name":"Living room"}`, user))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data cellars.CellarDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalCapacity != 50 {
		t.Fatalf("unexpected capacity: %d", envelope.Data.TotalCapacity)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 stored cellar, got %d", len(store.rows))
	}
}

func TestCellarsCreate_RejectsMissingName(t *testing.T) {
	svc, _ := cellarsService(t)
	user := &models.User{ID: uuid.New(), LineUserID: "U1"}

	rec := httptest.NewRecorder()
	CellarsCreate(svc, newTestLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cellars", `{}`, user))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCellarsGet_ForeignCellarReadsAsNotFound(t *testing.T) {
	svc, store := cellarsService(t)
	owner := uuid.New()
	intruder := &models.User{ID: uuid.New(), LineUserID: "U2"}

	cellarID := uuid.New()
	store.rows[cellarID] = &models.WineCellar{ID: cellarID, UserID: owner, Name: "Private", TotalCapacity: 50}

	req := authedRequest(http.MethodGet, fmt.Sprintf("/api/v1/cellars/%s", cellarID), "", intruder)
	req = routeRequest(req, "cellarId", cellarID.String())

	rec := httptest.NewRecorder()
	CellarsGet(svc, newTestLogger())(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCellarsGet_InvalidUUIDRejected(t *testing.T) {
	svc, _ := cellarsService(t)
	user := &models.User{ID: uuid.New(), LineUserID: "U1"}

	req := authedRequest(http.MethodGet, "/api/v1/cellars/not-a-uuid", "", user)
	req = routeRequest(req, "cellarId", "not-a-uuid")

	rec := httptest.NewRecorder()
	CellarsGet(svc, newTestLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCellarsUsage_ReportsPercent(t *testing.T) {
	svc, store := cellarsService(t)
	user := &models.User{ID: uuid.New(), LineUserID: "U1"}

	cellarID := uuid.New()
	store.rows[cellarID] = &models.WineCellar{ID: cellarID, UserID: user.ID, Name: "Main", TotalCapacity: 50}

	req := authedRequest(http.MethodGet, fmt.Sprintf("/api/v1/cellars/%s/usage", cellarID), "", user)
	req = routeRequest(req, "cellarId", cellarID.String())

	rec := httptest.NewRecorder()
	CellarsUsage(svc, newTestLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data cellars.UsageDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.UsedPercent != 92 {
		t.Fatalf("unexpected percent: %d", envelope.Data.UsedPercent)
	}
}
