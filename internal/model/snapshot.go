package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionSnapshot is the derived valuation of one position, recomputed on
// every refresh. Value and ChangePct always come from the same price pair.
type PositionSnapshot struct {
	Symbol            string
	Name              string
	Currency          string
	Shares            decimal.Decimal
	CurrentPrice      decimal.Decimal
	PriorPrice        decimal.Decimal
	Value             decimal.Decimal // CurrentPrice * Shares
	PriorValue        decimal.Decimal // PriorPrice * Shares
	ChangeAmount      decimal.Decimal // per share
	ChangePct         decimal.Decimal
	CostBasis         decimal.Decimal
	UnrealizedGain    decimal.Decimal
	UnrealizedGainPct decimal.Decimal
	AsOf              time.Time
}

// PositionResult is one row of a portfolio snapshot. Exactly one of Snapshot
// and Err is set.
type PositionResult struct {
	Symbol   string
	Name     string
	Snapshot *PositionSnapshot
	Err      error
}

// OK reports whether the position resolved.
func (r PositionResult) OK() bool {
	return r.Err == nil && r.Snapshot != nil
}

// PortfolioSnapshot aggregates the resolved positions of a refresh. Failed
// positions are listed in Positions with their error but excluded from every
// total.
type PortfolioSnapshot struct {
	Positions       []PositionResult
	TotalValue      decimal.Decimal
	TotalPriorValue decimal.Decimal
	DailyPnL        decimal.Decimal
	DailyPnLPct     decimal.Decimal
	// PctUndefined is set when TotalPriorValue is zero and DailyPnLPct was
	// reported as 0 instead of being computed.
	PctUndefined bool
	Resolved     int
	Failed       int
	ComputedAt   time.Time
}

// ValuePoint is the portfolio value on one trading date.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}
