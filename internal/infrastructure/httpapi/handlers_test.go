package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"CampusFeed/internal/domain"
	"CampusFeed/internal/infrastructure/storage"
	"CampusFeed/internal/metrics"
	"CampusFeed/internal/usecase"
)

type harness struct {
	router *gin.Engine
	store  *storage.MemoryStore
	userID int64
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) *harness {
	t.Helper()

	store := storage.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		typ := domain.TypeNews
		if i%2 == 0 {
			typ = domain.TypeActivity
		}
		if _, err := store.Insert(context.Background(), domain.ContentItem{
			Title:       "item",
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
			Type:        typ,
			Tags:        []string{"Academic"},
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	userID := store.AddUser(domain.UserProfile{University: "UC"})

	vocab := usecase.NewVocabulary([]string{"Academic", "Career", "Technology"}, "General")
	router := NewRouter(Deps{
		Feed: usecase.NewFeedComposer(store, store, nil, 20, nil),
		Accounts: usecase.NewAccounts(usecase.AccountsDeps{
			Users:   store,
			Content: store,
			Config:  usecase.AccountsConfig{MaxInterestLength: 30, MaxSuggestions: 15, FallbackSuggestions: []string{"Coding"}},
		}),
		Catalog: usecase.NewCatalog(store, vocab, nil),
		Metrics: metrics.New(),
	})

	return &harness{router: router, store: store, userID: userID}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestListNews(t *testing.T) {
	t.Parallel()
	h := setup(t)

	rec := h.do(http.MethodGet, "/api/news?page=1&limit=2&type=activity", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing request id header")
	}

	var page usecase.FeedPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 2 || !page.HasMore || page.Page != 1 || page.Limit != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].ID != 5 || page.Items[0].Type != domain.TypeActivity || len(page.Items[0].Tags) != 1 {
		t.Fatalf("unexpected first item %+v", page.Items[0])
	}
}

func TestListNewsRejectsBadQuery(t *testing.T) {
	t.Parallel()
	h := setup(t)

	for _, path := range []string{
		"/api/news?page=0",
		"/api/news?limit=-1",
		"/api/news?limit=abc",
		"/api/news?type=podcast",
		"/api/news?userId=x",
		"/api/news?page=4294967296&limit=4294967296",
	} {
		if rec := h.do(http.MethodGet, path, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestRegistrationFlow(t *testing.T) {
	t.Parallel()
	h := setup(t)

	rec := h.do(http.MethodPost, "/api/inscriptions", map[string]any{"userId": h.userID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing eventId: expected 400, got %d", rec.Code)
	}
	profile, _ := h.store.Profile(context.Background(), h.userID)
	if len(profile.Registrations) != 0 {
		t.Fatalf("rejected registration created a row")
	}

	rec = h.do(http.MethodPost, "/api/inscriptions", map[string]any{"userId": h.userID, "eventId": 3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = h.do(http.MethodPost, "/api/inscriptions", map[string]any{"userId": h.userID, "eventId": 3})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/api/inscriptions", map[string]any{"userId": h.userID, "eventId": 99})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event: expected 404, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/api/inscriptions", "{bad json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}

	rec = h.do(http.MethodGet, "/api/inscriptions/1", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":3`) {
		t.Fatalf("unexpected listing %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInterestLengthCap(t *testing.T) {
	t.Parallel()
	h := setup(t)

	rec := h.do(http.MethodPost, "/api/interests", map[string]any{"userId": h.userID, "tag": strings.Repeat("a", 31)})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/api/interests", map[string]any{"userId": h.userID, "tag": "Robotics"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = h.do(http.MethodGet, "/api/suggestions/1", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Coding") {
		t.Fatalf("unexpected suggestions %d: %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(http.MethodGet, "/api/suggestions/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestAddNews(t *testing.T) {
	t.Parallel()
	h := setup(t)

	rec := h.do(http.MethodPost, "/api/news", map[string]any{
		"title":     "Hackathon",
		"eventDate": "2025-05-10",
		"tags":      []string{"technology", "Pizza"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var item domain.ContentItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Type != domain.TypeActivity || len(item.Tags) != 1 || item.Tags[0] != "Technology" {
		t.Fatalf("unexpected item %+v", item)
	}

	if rec := h.do(http.MethodPost, "/api/news", map[string]any{"title": "x", "type": "podcast"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid type: expected 400, got %d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/api/news", map[string]any{"title": "x", "eventDate": "someday"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	h := setup(t)

	if rec := h.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz %d", rec.Code)
	}
	h.do(http.MethodGet, "/api/news", nil)
	rec := h.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "campusfeed_http_requests_total") {
		t.Fatalf("metrics missing http counters")
	}
}
