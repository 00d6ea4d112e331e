package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/feedwatch/internal/store"
	"github.com/lepinkainen/feedwatch/pkg/database"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer builds a router over a real temp-file SQLite store. The
// monitor is left nil; schedule rebuilds become no-ops.
func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "api.db")

	db, err := database.NewDatabase(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.InitializeSchema(db); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	st := store.New(db, 1000)
	srv := NewServer(st, nil, 5)
	return srv.Router(), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, expected 200", w.Code)
	}
}

func TestKeywordLifecycle(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/keywords", gin.H{"keyword": "Launch"})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /keywords = %d, body %s", w.Code, w.Body.String())
	}
	kw := decode[store.Keyword](t, w)
	if kw.Keyword != "launch" {
		t.Errorf("created keyword = %q, expected lowercase normalized", kw.Keyword)
	}

	// Duplicate (case-insensitive) is a conflict
	w = doJSON(t, router, http.MethodPost, "/keywords", gin.H{"keyword": "LAUNCH"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate POST /keywords = %d, expected 409", w.Code)
	}

	// Missing keyword field fails binding
	w = doJSON(t, router, http.MethodPost, "/keywords", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty POST /keywords = %d, expected 400", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/keywords", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /keywords = %d", w.Code)
	}
	if list := decode[[]store.Keyword](t, w); len(list) != 1 {
		t.Errorf("GET /keywords returned %d keywords, expected 1", len(list))
	}

	w = doJSON(t, router, http.MethodPut, "/keywords/1", gin.H{"is_active": false})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /keywords/1 = %d, body %s", w.Code, w.Body.String())
	}
	if updated := decode[store.Keyword](t, w); updated.IsActive {
		t.Error("keyword still active after update")
	}

	w = doJSON(t, router, http.MethodGet, "/keywords?active_only=true", nil)
	if list := decode[[]store.Keyword](t, w); len(list) != 0 {
		t.Errorf("active_only list = %d keywords, expected 0", len(list))
	}

	w = doJSON(t, router, http.MethodDelete, "/keywords/1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE /keywords/1 = %d, expected 204", w.Code)
	}
	w = doJSON(t, router, http.MethodDelete, "/keywords/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second DELETE /keywords/1 = %d, expected 404", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/keywords/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET deleted keyword = %d, expected 404", w.Code)
	}
}

func TestKeywordInvalidID(t *testing.T) {
	router, _ := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/keywords/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("GET /keywords/abc = %d, expected 400", w.Code)
	}
}

func TestFeedLifecycle(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/rss-feeds", gin.H{"url": "https://example.com/rss", "name": "Example"})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /rss-feeds = %d, body %s", w.Code, w.Body.String())
	}
	feed := decode[store.Feed](t, w)
	if feed.FetchIntervalMinutes != 5 {
		t.Errorf("created feed interval = %d, expected server default 5", feed.FetchIntervalMinutes)
	}

	w = doJSON(t, router, http.MethodPost, "/rss-feeds", gin.H{"url": "https://example.com/rss"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate POST /rss-feeds = %d, expected 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/rss-feeds", gin.H{"url": "not a url"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid URL POST /rss-feeds = %d, expected 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/rss-feeds/1", gin.H{"fetch_interval_minutes": 30, "is_active": false})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /rss-feeds/1 = %d, body %s", w.Code, w.Body.String())
	}
	updated := decode[store.Feed](t, w)
	if updated.FetchIntervalMinutes != 30 || updated.IsActive {
		t.Errorf("updated feed = %+v", updated)
	}

	w = doJSON(t, router, http.MethodGet, "/rss-feeds?active_only=true", nil)
	if list := decode[[]store.Feed](t, w); len(list) != 0 {
		t.Errorf("active_only list = %d feeds, expected 0", len(list))
	}

	w = doJSON(t, router, http.MethodDelete, "/rss-feeds/1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("DELETE /rss-feeds/1 = %d, expected 204", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/rss-feeds/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET deleted feed = %d, expected 404", w.Code)
	}
}

func TestRefetchFeed(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/rss-feeds/42/refetch", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("refetch of missing feed = %d, expected 404", w.Code)
	}

	doJSON(t, router, http.MethodPost, "/rss-feeds", gin.H{"url": "https://example.com/rss"})
	w = doJSON(t, router, http.MethodPost, "/rss-feeds/1/refetch", nil)
	if w.Code != http.StatusAccepted {
		t.Errorf("refetch = %d, expected 202", w.Code)
	}
}

func TestResultsEndpoint(t *testing.T) {
	router, st := newTestServer(t)
	ctx := context.Background()

	feed, err := st.CreateFeed(ctx, "https://example.com/rss", "", 5)
	if err != nil {
		t.Fatalf("CreateFeed() error = %v", err)
	}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	keywords := [][]string{{"launch"}, {"orbit"}, {"launch"}}
	links := []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}
	for i := range links {
		published := base.Add(-time.Duration(i) * time.Hour)
		if _, err := st.AddResult(ctx, feed.ID, "t", links[i], "s", published, keywords[i]); err != nil {
			t.Fatalf("AddResult() error = %v", err)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/results?page=1&page_size=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /results = %d, body %s", w.Code, w.Body.String())
	}
	page := decode[store.ResultPage](t, w)
	if len(page.Items) != 2 || page.TotalItems != 3 || page.TotalPages != 2 {
		t.Errorf("page = %d items, %d total, %d pages; expected 2/3/2", len(page.Items), page.TotalItems, page.TotalPages)
	}
	if page.Items[0].Link != "https://example.com/1" {
		t.Errorf("first item = %q, expected newest first", page.Items[0].Link)
	}

	w = doJSON(t, router, http.MethodGet, "/results?keywords=orbit", nil)
	page = decode[store.ResultPage](t, w)
	if page.TotalItems != 1 {
		t.Errorf("keyword-filtered total = %d, expected 1", page.TotalItems)
	}

	// Defaults apply when no query parameters are given
	w = doJSON(t, router, http.MethodGet, "/results", nil)
	page = decode[store.ResultPage](t, w)
	if page.CurrentPage != 1 || page.PageSize != 12 {
		t.Errorf("default page metadata = %d/%d, expected 1/12", page.CurrentPage, page.PageSize)
	}

	for _, path := range []string{
		"/results?page=0",
		"/results?page=abc",
		"/results?page_size=0",
		"/results?page_size=101",
	} {
		if w := doJSON(t, router, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, expected 400", path, w.Code)
		}
	}
}
