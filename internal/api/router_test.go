package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alphapocket/pocket-backend/internal/api"
	"github.com/alphapocket/pocket-backend/internal/api/handlers"
	"github.com/alphapocket/pocket-backend/internal/api/middleware"
	"github.com/alphapocket/pocket-backend/internal/config"
	"github.com/alphapocket/pocket-backend/internal/testutil"
	"github.com/alphapocket/pocket-backend/internal/watchlist"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mock := testutil.NewSeededMockYahooClient().WithCloses("2330.TW", 580, 590)
	cfg := &config.Config{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Display: config.DisplayConfig{BaseCurrency: "USD"},
	}

	return api.NewRouter(api.Services{
		System:    testutil.NewTestSystemService(t, db),
		Portfolio: testutil.NewTestPortfolioService(t, db, mock),
		Watchlist: testutil.NewTestWatchlistService(t, mock, nil),
		Sessions:  testutil.NewTestSessionManager(t),
	}, cfg)
}

func listCategories(t *testing.T, router http.Handler, token string) ([]watchlist.Category, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/watchlist/", nil)
	if token != "" {
		req.Header.Set(middleware.SessionHeader, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var categories []watchlist.Category
	if err := json.NewDecoder(w.Body).Decode(&categories); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return categories, w.Header().Get(middleware.SessionHeader)
}

// TestRouter_WatchlistSession tests that watchlist edits stick to the session
// that made them.
//
// WHY: watchlists live in memory per session. A client that replays its token
// must see its own edits, and a new client must start from the defaults.
func TestRouter_WatchlistSession(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/watchlist/category", strings.NewReader(`{"name":"High Yield"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	token := w.Header().Get(middleware.SessionHeader)
	if token == "" {
		t.Fatal("Expected a session token for a new client")
	}

	categories, reissued := listCategories(t, router, token)
	if reissued != "" {
		t.Error("Expected a valid token to be accepted without a new one")
	}
	if len(categories) != 3 || categories[2].Name != "High Yield" {
		t.Errorf("Expected the new category last, got %+v", categories)
	}

	fresh, freshToken := listCategories(t, router, "")
	if len(fresh) != 2 {
		t.Errorf("Expected a new client to see the defaults, got %+v", fresh)
	}
	if freshToken != "" {
		t.Error("Expected no token until the new client changes something")
	}

	req = httptest.NewRequest(http.MethodPost, "/api/watchlist/category", strings.NewReader(`{"name":"Dividends"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, "not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	replaced := w.Header().Get(middleware.SessionHeader)
	if replaced == "" || replaced == token {
		t.Error("Expected an invalid token to be replaced")
	}
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/system/health", http.StatusOK},
		{"/api/system/version", http.StatusOK},
		{"/api/portfolio/positions", http.StatusOK},
		{"/api/portfolio/snapshot", http.StatusOK},
		{"/api/portfolio/history", http.StatusOK},
		{"/api/quote/search?q=2330", http.StatusOK},
		{"/api/watchlist/quotes", http.StatusBadRequest},
		{"/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}

	t.Run("search normalizes four digit codes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote/search?q=2330", nil))

		var resp handlers.QuoteResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Symbol != "2330.TW" {
			t.Errorf("Expected 2330.TW, got %q", resp.Symbol)
		}
	})
}
