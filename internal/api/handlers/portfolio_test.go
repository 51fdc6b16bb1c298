package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alphapocket/pocket-backend/internal/api/handlers"
	"github.com/alphapocket/pocket-backend/internal/testutil"
)

// TestPortfolioHandler_Snapshot tests the GET /api/portfolio/snapshot endpoint.
//
// WHY: this is the dashboard's main payload. The frontend depends on failed
// rows arriving as rows, and on totals and display strings being consistent.
func TestPortfolioHandler_Snapshot(t *testing.T) {
	t.Run("returns totals and rows", func(t *testing.T) {
		db := testutil.SetupEmptyTestDB(t)
		testutil.NewPosition().WithSymbol("TSLA").WithName("Tesla").WithShares(50).WithAvgCost(210).WithSortOrder(1).Build(t, db)
		testutil.NewPosition().WithSymbol("NVDA").WithName("Nvidia").WithShares(10).WithAvgCost(400).WithSortOrder(2).Build(t, db)
		mock := testutil.NewMockYahooClient().
			WithCloses("TSLA", 200, 220).
			WithCloses("NVDA", 500, 450)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, mock), "USD")

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/snapshot", nil)
		w := httptest.NewRecorder()

		handler.Snapshot(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
		}

		var resp handlers.PortfolioSnapshotResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if resp.TotalValue.Display != "$15,500.00" {
			t.Errorf("Expected total $15,500.00, got %s", resp.TotalValue.Display)
		}
		if resp.DailyPnL.Display != "$500.00" || resp.Direction != "up" {
			t.Errorf("Expected +$500.00 up, got %s %s", resp.DailyPnL.Display, resp.Direction)
		}
		if resp.DailyPnLPct.String() != "3.33" {
			t.Errorf("Expected 3.33%%, got %s", resp.DailyPnLPct)
		}
		if len(resp.Positions) != 2 {
			t.Fatalf("Expected 2 rows, got %d", len(resp.Positions))
		}
		tsla := resp.Positions[0]
		if tsla.Status != "ok" || tsla.Snapshot.ChangePct.String() != "10" {
			t.Errorf("Unexpected TSLA row %+v", tsla)
		}
		if tsla.Snapshot.Value.Display != "$11,000.00" {
			t.Errorf("Expected $11,000.00, got %s", tsla.Snapshot.Value.Display)
		}
	})

	t.Run("reports failed rows without failing the request", func(t *testing.T) {
		db := testutil.SetupEmptyTestDB(t)
		testutil.CreatePosition(t, db, "TSLA", 50, 210)
		testutil.CreatePosition(t, db, "GONE", 1, 1)
		mock := testutil.NewMockYahooClient().WithCloses("TSLA", 200, 220)
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, mock), "USD")

		w := httptest.NewRecorder()
		handler.Snapshot(w, httptest.NewRequest(http.MethodGet, "/api/portfolio/snapshot", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var resp handlers.PortfolioSnapshotResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)

		if resp.Resolved != 1 || resp.Failed != 1 {
			t.Errorf("Expected 1 resolved and 1 failed, got %d/%d", resp.Resolved, resp.Failed)
		}
		var gone *handlers.PositionRowResponse
		for i := range resp.Positions {
			if resp.Positions[i].Symbol == "GONE" {
				gone = &resp.Positions[i]
			}
		}
		if gone == nil || gone.Status != "error" || gone.ErrorCode != "not_found" || gone.Snapshot != nil {
			t.Errorf("Unexpected GONE row %+v", gone)
		}
		if resp.TotalValue.Display != "$11,000.00" {
			t.Errorf("Expected failed row excluded from total, got %s", resp.TotalValue.Display)
		}
	})

	t.Run("returns 500 when positions cannot be read", func(t *testing.T) {
		db := testutil.SetupEmptyTestDB(t)
		testutil.InsertRawPosition(t, db, "BAD", "x", "1")
		handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, testutil.NewMockYahooClient()), "USD")

		w := httptest.NewRecorder()
		handler.Snapshot(w, httptest.NewRequest(http.MethodGet, "/api/portfolio/snapshot", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", w.Code)
		}
	})
}

func TestPortfolioHandler_Positions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, testutil.NewMockYahooClient()), "USD")

	w := httptest.NewRecorder()
	handler.Positions(w, httptest.NewRequest(http.MethodGet, "/api/portfolio/positions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp []handlers.PositionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp) != 4 {
		t.Fatalf("Expected 4 positions, got %d", len(resp))
	}
	if resp[0].Symbol != "TSLA" || resp[0].CostBasis.String() != "10500" {
		t.Errorf("Unexpected first position %+v", resp[0])
	}
}

func TestPortfolioHandler_History(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewPortfolioHandler(testutil.NewTestPortfolioService(t, db, testutil.NewSeededMockYahooClient()), "USD")

	w := httptest.NewRecorder()
	handler.History(w, httptest.NewRequest(http.MethodGet, "/api/portfolio/history", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp []handlers.ValuePointResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(resp))
	}
	if resp[4].Value.Display != "$65,100.00" {
		t.Errorf("Expected last point $65,100.00, got %s", resp[4].Value.Display)
	}
	if len(resp[0].Date) != len("2006-01-02") {
		t.Errorf("Expected date-only format, got %q", resp[0].Date)
	}
}
