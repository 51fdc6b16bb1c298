package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/service"
)

var baseDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func series(symbol string, closes ...float64) model.QuoteSeries {
	return seriesFrom(symbol, baseDay, closes...)
}

func seriesFrom(symbol string, start time.Time, closes ...float64) model.QuoteSeries {
	points := make([]model.QuotePoint, len(closes))
	for i, c := range closes {
		points[i] = model.QuotePoint{Date: start.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return model.QuoteSeries{Symbol: symbol, Currency: "USD", Points: points}
}

func position(t *testing.T, symbol string, shares, avgCost float64) model.Position {
	t.Helper()
	p, err := model.NewPosition(symbol, "", decimal.NewFromFloat(shares), decimal.NewFromFloat(avgCost))
	if err != nil {
		t.Fatalf("NewPosition() returned unexpected error: %v", err)
	}
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TestComputePosition tests single-position valuation.
//
// WHY: every number on the dashboard row (price, value, day change) comes from
// this function, so the arithmetic and its guards must be exact.
func TestComputePosition(t *testing.T) {
	t.Run("values TSLA 50 shares from a 200 -> 220 move", func(t *testing.T) {
		p := position(t, "TSLA", 50, 210)

		snap, err := service.ComputePosition(p, series("TSLA", 200, 220))
		if err != nil {
			t.Fatalf("ComputePosition() returned unexpected error: %v", err)
		}

		if !snap.Value.Equal(dec("11000")) {
			t.Errorf("Expected value 11000, got %s", snap.Value)
		}
		if !snap.ChangePct.Equal(dec("10.00")) {
			t.Errorf("Expected change pct 10.00, got %s", snap.ChangePct)
		}
		if !snap.CurrentPrice.Equal(dec("220")) || !snap.PriorPrice.Equal(dec("200")) {
			t.Errorf("Unexpected prices: current %s prior %s", snap.CurrentPrice, snap.PriorPrice)
		}
		if !snap.ChangeAmount.Equal(dec("20")) {
			t.Errorf("Expected change amount 20, got %s", snap.ChangeAmount)
		}
		if !snap.CostBasis.Equal(dec("10500")) || !snap.UnrealizedGain.Equal(dec("500")) {
			t.Errorf("Unexpected cost basis %s / gain %s", snap.CostBasis, snap.UnrealizedGain)
		}
		if !snap.UnrealizedGainPct.Equal(dec("4.76")) {
			t.Errorf("Expected unrealized gain pct 4.76, got %s", snap.UnrealizedGainPct)
		}
	})

	t.Run("uses only the last two points", func(t *testing.T) {
		p := position(t, "AAPL", 10, 0)

		snap, err := service.ComputePosition(p, series("AAPL", 1, 500, 100, 90))
		if err != nil {
			t.Fatalf("ComputePosition() returned unexpected error: %v", err)
		}
		if !snap.ChangePct.Equal(dec("-10")) {
			t.Errorf("Expected change pct -10, got %s", snap.ChangePct)
		}
		if !snap.UnrealizedGainPct.IsZero() {
			t.Errorf("Expected zero gain pct for zero cost basis, got %s", snap.UnrealizedGainPct)
		}
	})

	t.Run("single point is insufficient history", func(t *testing.T) {
		_, err := service.ComputePosition(position(t, "TSLA", 1, 1), series("TSLA", 220))
		if !errors.Is(err, apperrors.ErrInsufficientHistory) {
			t.Errorf("Expected ErrInsufficientHistory, got %v", err)
		}
	})

	t.Run("empty series is insufficient history", func(t *testing.T) {
		_, err := service.ComputePosition(position(t, "TSLA", 1, 1), model.QuoteSeries{})
		if !errors.Is(err, apperrors.ErrInsufficientHistory) {
			t.Errorf("Expected ErrInsufficientHistory, got %v", err)
		}
	})

	t.Run("zero prior close is guarded", func(t *testing.T) {
		_, err := service.ComputePosition(position(t, "TSLA", 1, 1), series("TSLA", 0, 220))
		if !errors.Is(err, apperrors.ErrZeroPriorPrice) {
			t.Errorf("Expected ErrZeroPriorPrice, got %v", err)
		}
	})

	t.Run("descending dates are rejected", func(t *testing.T) {
		s := series("TSLA", 200, 220)
		s.Points[0], s.Points[1] = s.Points[1], s.Points[0]

		_, err := service.ComputePosition(position(t, "TSLA", 1, 1), s)
		if !errors.Is(err, apperrors.ErrUnorderedSeries) {
			t.Errorf("Expected ErrUnorderedSeries, got %v", err)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		p := position(t, "NVDA", 3.5, 400)
		s := series("NVDA", 480.25, 485.09)

		first, err1 := service.ComputePosition(p, s)
		second, err2 := service.ComputePosition(p, s)
		if err1 != nil || err2 != nil {
			t.Fatalf("Unexpected errors: %v, %v", err1, err2)
		}
		if !first.Value.Equal(second.Value) || !first.ChangePct.Equal(second.ChangePct) {
			t.Errorf("Expected identical snapshots, got %+v and %+v", first, second)
		}
	})

	t.Run("falls back to the series name", func(t *testing.T) {
		s := series("TSLA", 200, 220)
		s.Name = "Tesla, Inc."

		snap, err := service.ComputePosition(position(t, "TSLA", 1, 1), s)
		if err != nil {
			t.Fatalf("ComputePosition() returned unexpected error: %v", err)
		}
		if snap.Name != "Tesla, Inc." {
			t.Errorf("Expected series name, got %q", snap.Name)
		}
	})
}

// TestComputePortfolio tests aggregation with partial failure.
//
// WHY: the total balance must only ever reflect positions that actually
// resolved, and a failing symbol must not disturb the others.
func TestComputePortfolio(t *testing.T) {
	tsla := position(t, "TSLA", 50, 210)
	nvda := position(t, "NVDA", 10, 400)
	btc := position(t, "BTC-USD", 0.5, 60000)

	t.Run("sums resolved positions", func(t *testing.T) {
		snap := service.ComputePortfolio(
			[]model.Position{tsla, nvda},
			map[string]model.QuoteSeries{
				"TSLA": series("TSLA", 200, 220),
				"NVDA": series("NVDA", 500, 450),
			},
			nil,
		)

		if !snap.TotalValue.Equal(dec("15500")) {
			t.Errorf("Expected total 15500, got %s", snap.TotalValue)
		}
		if !snap.TotalPriorValue.Equal(dec("15000")) {
			t.Errorf("Expected prior total 15000, got %s", snap.TotalPriorValue)
		}
		if !snap.DailyPnL.Equal(dec("500")) {
			t.Errorf("Expected pnl 500, got %s", snap.DailyPnL)
		}
		if !snap.DailyPnLPct.Equal(dec("3.33")) {
			t.Errorf("Expected pnl pct 3.33, got %s", snap.DailyPnLPct)
		}
		if snap.PctUndefined {
			t.Error("Expected pct to be defined")
		}
		if snap.Resolved != 2 || snap.Failed != 0 {
			t.Errorf("Expected 2 resolved 0 failed, got %d/%d", snap.Resolved, snap.Failed)
		}
	})

	t.Run("excludes failures without changing other values", func(t *testing.T) {
		seriesMap := map[string]model.QuoteSeries{
			"TSLA":    series("TSLA", 200, 220),
			"NVDA":    series("NVDA", 500, 450),
			"BTC-USD": series("BTC-USD", 94200),
		}
		all := service.ComputePortfolio([]model.Position{tsla, nvda}, seriesMap, nil)
		withFailures := service.ComputePortfolio(
			[]model.Position{tsla, btc, nvda},
			seriesMap,
			map[string]error{"NVDA": nil},
		)

		if !withFailures.TotalValue.Equal(all.TotalValue) {
			t.Errorf("Expected total %s, got %s", all.TotalValue, withFailures.TotalValue)
		}
		if withFailures.Failed != 1 || withFailures.Resolved != 2 {
			t.Errorf("Expected 2 resolved 1 failed, got %d/%d", withFailures.Resolved, withFailures.Failed)
		}

		row := withFailures.Positions[1]
		if row.Symbol != "BTC-USD" || row.OK() {
			t.Fatalf("Expected failed BTC-USD row in input order, got %+v", row)
		}
		if !errors.Is(row.Err, apperrors.ErrInsufficientHistory) {
			t.Errorf("Expected ErrInsufficientHistory, got %v", row.Err)
		}
		if !withFailures.Positions[0].Snapshot.Value.Equal(dec("11000")) {
			t.Errorf("Expected TSLA value unchanged, got %s", withFailures.Positions[0].Snapshot.Value)
		}
	})

	t.Run("surfaces fetch errors and missing series per row", func(t *testing.T) {
		snap := service.ComputePortfolio(
			[]model.Position{tsla, nvda},
			map[string]model.QuoteSeries{"TSLA": series("TSLA", 200, 220)},
			map[string]error{"TSLA": apperrors.ErrNetwork},
		)

		if !errors.Is(snap.Positions[0].Err, apperrors.ErrNetwork) {
			t.Errorf("Expected TSLA network error, got %v", snap.Positions[0].Err)
		}
		if !errors.Is(snap.Positions[1].Err, apperrors.ErrSymbolNotFound) {
			t.Errorf("Expected NVDA not found, got %v", snap.Positions[1].Err)
		}
	})

	t.Run("all failed reports zero percent with flag", func(t *testing.T) {
		snap := service.ComputePortfolio(
			[]model.Position{tsla},
			map[string]model.QuoteSeries{},
			map[string]error{"TSLA": apperrors.ErrNetwork},
		)

		if !snap.TotalValue.IsZero() || !snap.DailyPnLPct.IsZero() {
			t.Errorf("Expected zero totals, got %s / %s", snap.TotalValue, snap.DailyPnLPct)
		}
		if !snap.PctUndefined {
			t.Error("Expected PctUndefined to be set")
		}
	})

	t.Run("empty portfolio", func(t *testing.T) {
		snap := service.ComputePortfolio(nil, nil, nil)

		if len(snap.Positions) != 0 || !snap.PctUndefined {
			t.Errorf("Unexpected empty snapshot: %+v", snap)
		}
	})
}

// TestComputeHistory tests the balance-over-time series.
func TestComputeHistory(t *testing.T) {
	t.Run("sums shares times close per date", func(t *testing.T) {
		history := service.ComputeHistory(
			[]model.Position{position(t, "TSLA", 2, 0), position(t, "AAPL", 1, 0)},
			map[string]model.QuoteSeries{
				"TSLA": series("TSLA", 100, 110, 120),
				"AAPL": series("AAPL", 10, 20, 30),
			},
		)

		want := []string{"210", "240", "270"}
		if len(history) != len(want) {
			t.Fatalf("Expected %d points, got %d", len(want), len(history))
		}
		for i, w := range want {
			if !history[i].Value.Equal(dec(w)) {
				t.Errorf("Point %d: expected %s, got %s", i, w, history[i].Value)
			}
		}
	})

	t.Run("carries closes forward and starts when all positions are priced", func(t *testing.T) {
		// BTC trades every day, TSLA starts a day later and skips day 3.
		btcSeries := series("BTC-USD", 1000, 1100, 1200, 1300)
		tslaSeries := model.QuoteSeries{Symbol: "TSLA", Points: []model.QuotePoint{
			{Date: baseDay.AddDate(0, 0, 1), Close: dec("10")},
			{Date: baseDay.AddDate(0, 0, 3), Close: dec("20")},
		}}

		history := service.ComputeHistory(
			[]model.Position{position(t, "BTC-USD", 1, 0), position(t, "TSLA", 1, 0)},
			map[string]model.QuoteSeries{"BTC-USD": btcSeries, "TSLA": tslaSeries},
		)

		want := []string{"1110", "1210", "1320"}
		if len(history) != len(want) {
			t.Fatalf("Expected %d points, got %d: %+v", len(want), len(history), history)
		}
		for i, w := range want {
			if !history[i].Value.Equal(dec(w)) {
				t.Errorf("Point %d: expected %s, got %s", i, w, history[i].Value)
			}
		}
		if !history[0].Date.Equal(baseDay.AddDate(0, 0, 1)) {
			t.Errorf("Expected history to start on %s, got %s", baseDay.AddDate(0, 0, 1), history[0].Date)
		}
	})

	t.Run("skips positions without a series", func(t *testing.T) {
		history := service.ComputeHistory(
			[]model.Position{position(t, "TSLA", 1, 0), position(t, "NOPE", 5, 0)},
			map[string]model.QuoteSeries{"TSLA": series("TSLA", 1, 2)},
		)
		if len(history) != 2 || !history[1].Value.Equal(dec("2")) {
			t.Errorf("Unexpected history: %+v", history)
		}
	})

	t.Run("nothing priced yields an empty history", func(t *testing.T) {
		history := service.ComputeHistory([]model.Position{position(t, "TSLA", 1, 0)}, nil)
		if history == nil || len(history) != 0 {
			t.Errorf("Expected empty non-nil history, got %+v", history)
		}
	})
}
