package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltio/panelquote/internal/ai"
	"github.com/voltio/panelquote/internal/auth"
	"github.com/voltio/panelquote/internal/cache"
	"github.com/voltio/panelquote/internal/events"
	"github.com/voltio/panelquote/internal/models"
	"github.com/voltio/panelquote/internal/platform/logger"
	"github.com/voltio/panelquote/internal/repository"
	"github.com/voltio/panelquote/internal/services"
)

func setupTestServer(t *testing.T) http.Handler {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = dbi.AutoMigrate(&models.Client{}, &models.Component{}, &models.Quotation{}, &models.QuotationItem{},
		&models.QuotePattern{}, &models.AIRecommendation{}, &models.AILearningMetric{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := cache.NewManager(time.Minute)
	t.Cleanup(store.Stop)

	log := logger.NewNop()
	repos := repository.New(dbi, store, time.Minute, log)
	bus := events.NewBus(log)
	return New(Deps{
		DB:         dbi,
		Repos:      repos,
		Quotations: services.NewQuotationService(repos, bus),
		Components: services.NewComponentService(repos),
		AI:         ai.NewService(repos, log),
		Log:        log,
	})
}

// sessionCookie mints a valid signed session cookie for test requests.
func sessionCookie(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := setupTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	h := setupTestServer(t)

	for _, path := range []string{"/quotations", "/components", "/clients", "/ai/feedback"} {
		rec := doJSON(t, h, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}

	// Tampered signature is as good as no cookie.
	rec := doJSON(t, h, http.MethodGet, "/quotations", nil, &http.Cookie{Name: "session", Value: "user-1.bogus"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("tampered cookie: expected 401, got %d", rec.Code)
	}
}

func TestQuotationLifecycleOverHTTP(t *testing.T) {
	h := setupTestServer(t)
	cookie := sessionCookie(t, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/quotations", map[string]any{
		"client_id": "client-1",
		"template":  "minimal",
		"items": []map[string]any{
			{"component_id": "comp-1", "quantity": 2, "unit_price": 50000},
		},
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Quotation
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.Status != models.StatusDraft {
		t.Fatalf("unexpected created quotation: %+v", created)
	}
	if created.Total != 107500 {
		t.Fatalf("expected total 107500, got %v", created.Total)
	}

	rec = doJSON(t, h, http.MethodGet, "/quotations/get?id="+created.ID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var fetched models.Quotation
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode fetched: %v", err)
	}
	if len(fetched.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(fetched.Items))
	}

	rec = doJSON(t, h, http.MethodPost, "/quotations/transition?id="+created.ID,
		map[string]string{"status": "pending"}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("transition: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Illegal transition surfaces as a 409.
	rec = doJSON(t, h, http.MethodPost, "/quotations/transition?id="+created.ID,
		map[string]string{"status": "draft"}, cookie)
	if rec.Code != http.StatusConflict {
		t.Fatalf("bad transition: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/quotations?status=pending", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Items []models.Quotation `json:"items"`
		Total int                `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Total != 1 {
		t.Fatalf("expected 1 pending quotation, got %d", listed.Total)
	}
}

func TestQuotationNotFoundOverHTTP(t *testing.T) {
	h := setupTestServer(t)
	cookie := sessionCookie(t, "user-1")

	rec := doJSON(t, h, http.MethodGet, "/quotations/get?id=missing", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, h, http.MethodGet, "/quotations/get", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id: expected 400, got %d", rec.Code)
	}
}

func TestComponentValidationOverHTTP(t *testing.T) {
	h := setupTestServer(t)
	cookie := sessionCookie(t, "user-1")

	rec := doJSON(t, h, http.MethodPost, "/components", map[string]any{"unit_price": 100}, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for nameless component, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/components", map[string]any{
		"name": "MCCB 250A", "category": "MCCB", "manufacturer": "Schneider", "unit_price": 50000,
	}, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAIRecommendationsSoftDisableForAnonymous(t *testing.T) {
	h := setupTestServer(t)

	// Anonymous callers get an empty result, not a 401.
	rec := doJSON(t, h, http.MethodPost, "/ai/recommendations", map[string]any{
		"existing_components": []map[string]any{{"component_id": "c-1", "category": "MCCB"}},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		RecommendedComponents []json.RawMessage `json:"recommended_components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.RecommendedComponents) != 0 {
		t.Fatalf("expected empty recommendations for anonymous caller")
	}
}
