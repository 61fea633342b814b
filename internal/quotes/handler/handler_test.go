package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel_backoffice/internal/quotes/repository"
	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/internal/quotes/service"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	quotes map[uuid.UUID]*repository.Quotation
}

func (r *stubRepo) NextCode(context.Context) (string, error) { return "COT-2026-0001", nil }

func (r *stubRepo) Create(_ context.Context, q *repository.Quotation) error {
	r.quotes[q.ID] = q
	return nil
}

func (r *stubRepo) Update(_ context.Context, q *repository.Quotation) error {
	r.quotes[q.ID] = q
	return nil
}

func (r *stubRepo) UpdateTotal(_ context.Context, id uuid.UUID, total decimal.Decimal) error {
	q, ok := r.quotes[id]
	if !ok {
		return apperr.NotFound("quotation not found")
	}
	q.Total = total
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*repository.Quotation, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, apperr.NotFound("quotation not found")
	}
	return q, nil
}

func (r *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.quotes, id)
	return nil
}

func (r *stubRepo) List(context.Context, repository.ListParams) (*repository.ListResult, error) {
	return &repository.ListResult{Page: 1, PageSize: 20}, nil
}

func (r *stubRepo) FetchItems(context.Context, uuid.UUID) ([]sequencer.Item, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{quotes: map[uuid.UUID]*repository.Quotation{}}
	svc := service.New(repo, nil, sequencer.DefaultClassifier(), logger.Nop())
	h := New(svc, validator.New())

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1/quotes"))
	return engine, repo
}

func doRequest(engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateQuotation(t *testing.T) {
	engine, repo := newTestRouter(t)

	rec := doRequest(engine, http.MethodPost, "/api/v1/quotes", map[string]any{
		"clientName":  "  Familia Rojas ",
		"travelStart": "2026-11-02",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.quotes) != 1 {
		t.Fatalf("expected one stored quotation, got %d", len(repo.quotes))
	}
	for _, q := range repo.quotes {
		if q.ClientName != "Familia Rojas" {
			t.Fatalf("expected trimmed client name, got %q", q.ClientName)
		}
		if q.Pax != 1 {
			t.Fatalf("expected pax default 1, got %d", q.Pax)
		}
	}
}

func TestCreateQuotationRejectsBadDate(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doRequest(engine, http.MethodPost, "/api/v1/quotes", map[string]any{
		"clientName":  "Familia Rojas",
		"travelStart": "02/11/2026",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetQuotationInvalidID(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doRequest(engine, http.MethodGet, "/api/v1/quotes/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetQuotationNotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doRequest(engine, http.MethodGet, "/api/v1/quotes/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoveItemRejectsBadIndex(t *testing.T) {
	engine, _ := newTestRouter(t)

	path := "/api/v1/quotes/" + uuid.NewString() + "/editor/items/-1/move"
	rec := doRequest(engine, http.MethodPost, path, map[string]any{"delta": 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMoveItemRejectsBadDelta(t *testing.T) {
	engine, _ := newTestRouter(t)

	path := "/api/v1/quotes/" + uuid.NewString() + "/editor/items/0/move"
	for _, delta := range []int{0, 2, -3} {
		rec := doRequest(engine, http.MethodPost, path, map[string]any{"delta": delta})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("delta %d: expected 400, got %d", delta, rec.Code)
		}
	}
}

func TestEditorRoutesWithoutRegistry(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := doRequest(engine, http.MethodPost, "/api/v1/quotes/"+uuid.NewString()+"/editor", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
