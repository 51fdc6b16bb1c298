package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
)

// PercentPlaces is the number of decimal places percentages are rounded to.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100 rounded to PercentPlaces. Callers guard whole != 0.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(hundred).Round(PercentPlaces)
}

// ComputePosition values one position from its close series.
//
// The last point is the current price and the one before it the prior close.
// The series must hold at least two points in strictly ascending date order.
//
// Errors:
//   - apperrors.ErrInsufficientHistory: fewer than two points
//   - apperrors.ErrUnorderedSeries: dates not strictly ascending
//   - apperrors.ErrZeroPriorPrice: prior close is zero, so no percent change exists
func ComputePosition(position model.Position, series model.QuoteSeries) (model.PositionSnapshot, error) {
	n := series.Len()
	if n < 2 {
		return model.PositionSnapshot{}, fmt.Errorf("%s: %w: got %d point(s)", position.Symbol, apperrors.ErrInsufficientHistory, n)
	}
	for i := 1; i < n; i++ {
		if !series.Points[i].Date.After(series.Points[i-1].Date) {
			return model.PositionSnapshot{}, fmt.Errorf("%s: %w", position.Symbol, apperrors.ErrUnorderedSeries)
		}
	}

	last := series.Points[n-1]
	current := last.Close
	prior := series.Points[n-2].Close
	if prior.IsZero() {
		return model.PositionSnapshot{}, fmt.Errorf("%s: %w", position.Symbol, apperrors.ErrZeroPriorPrice)
	}

	value := current.Mul(position.Shares)
	costBasis := position.CostBasis()
	gain := value.Sub(costBasis)
	gainPct := decimal.Zero
	if !costBasis.IsZero() {
		gainPct = percentOf(gain, costBasis)
	}

	name := position.Name
	if name == "" {
		name = series.Name
	}

	return model.PositionSnapshot{
		Symbol:            position.Symbol,
		Name:              name,
		Currency:          series.Currency,
		Shares:            position.Shares,
		CurrentPrice:      current,
		PriorPrice:        prior,
		Value:             value,
		PriorValue:        prior.Mul(position.Shares),
		ChangeAmount:      current.Sub(prior),
		ChangePct:         percentOf(current.Sub(prior), prior),
		CostBasis:         costBasis,
		UnrealizedGain:    gain,
		UnrealizedGainPct: gainPct,
		AsOf:              last.Date,
	}, nil
}

// ComputePortfolio values every position and aggregates the ones that resolved.
//
// A position fails when fetchErrors has an entry for its symbol, when series
// has none, or when ComputePosition rejects its series. Failed positions keep
// their row, in input order, with the error attached, and are left out of
// every total. The aggregate itself never fails: when nothing resolved, or the
// prior value sums to zero, DailyPnLPct is reported as 0 with PctUndefined set.
func ComputePortfolio(positions []model.Position, series map[string]model.QuoteSeries, fetchErrors map[string]error) model.PortfolioSnapshot {
	snapshot := model.PortfolioSnapshot{
		Positions:       make([]model.PositionResult, 0, len(positions)),
		TotalValue:      decimal.Zero,
		TotalPriorValue: decimal.Zero,
	}

	for _, p := range positions {
		result := model.PositionResult{Symbol: p.Symbol, Name: p.Name}

		ps, err := resolvePosition(p, series, fetchErrors)
		if err != nil {
			result.Err = err
			snapshot.Failed++
		} else {
			result.Snapshot = &ps
			result.Name = ps.Name
			snapshot.Resolved++
			snapshot.TotalValue = snapshot.TotalValue.Add(ps.Value)
			snapshot.TotalPriorValue = snapshot.TotalPriorValue.Add(ps.PriorValue)
		}
		snapshot.Positions = append(snapshot.Positions, result)
	}

	snapshot.DailyPnL = snapshot.TotalValue.Sub(snapshot.TotalPriorValue)
	if snapshot.TotalPriorValue.IsZero() {
		snapshot.DailyPnLPct = decimal.Zero
		snapshot.PctUndefined = true
	} else {
		snapshot.DailyPnLPct = percentOf(snapshot.DailyPnL, snapshot.TotalPriorValue)
	}

	return snapshot
}

func resolvePosition(p model.Position, series map[string]model.QuoteSeries, fetchErrors map[string]error) (model.PositionSnapshot, error) {
	if err, failed := fetchErrors[p.Symbol]; failed && err != nil {
		return model.PositionSnapshot{}, err
	}
	s, ok := series[p.Symbol]
	if !ok {
		return model.PositionSnapshot{}, fmt.Errorf("%s: %w", p.Symbol, apperrors.ErrSymbolNotFound)
	}
	return ComputePosition(p, s)
}

// ComputeHistory returns the portfolio value for each trading date in the
// fetched window.
//
// Positions without a series are skipped. Each position's last close is
// carried forward over dates on which it did not trade, and the history starts
// at the first date on which every included position has a price, so early
// points are never understated by a missing holding.
func ComputeHistory(positions []model.Position, series map[string]model.QuoteSeries) []model.ValuePoint {
	type holding struct {
		shares decimal.Decimal
		points []model.QuotePoint
		next   int
		last   decimal.Decimal
	}

	var holdings []*holding
	var dates []time.Time
	var start time.Time
	for _, p := range positions {
		s, ok := series[p.Symbol]
		if !ok || s.Len() == 0 {
			continue
		}
		h := &holding{shares: p.Shares, points: make([]model.QuotePoint, s.Len())}
		for i, pt := range s.Points {
			h.points[i] = model.QuotePoint{Date: day(pt.Date), Close: pt.Close}
			dates = append(dates, h.points[i].Date)
		}
		slices.SortStableFunc(h.points, func(a, b model.QuotePoint) int { return a.Date.Compare(b.Date) })
		if first := h.points[0].Date; first.After(start) {
			start = first
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return []model.ValuePoint{}
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	dates = slices.CompactFunc(dates, func(a, b time.Time) bool { return a.Equal(b) })

	history := make([]model.ValuePoint, 0, len(dates))
	for _, d := range dates {
		total := decimal.Zero
		for _, h := range holdings {
			for h.next < len(h.points) && !h.points[h.next].Date.After(d) {
				h.last = h.points[h.next].Close
				h.next++
			}
			total = total.Add(h.last.Mul(h.shares))
		}
		if d.Before(start) {
			continue
		}
		history = append(history, model.ValuePoint{Date: d, Value: total})
	}
	return history
}

func day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
