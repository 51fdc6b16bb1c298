package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lookback is the historical window requested from the quote source,
// expressed in the chart API's range vocabulary. The interval is always daily.
type Lookback string

const (
	LookbackOneDay      Lookback = "1d"
	LookbackFiveDays    Lookback = "5d"
	LookbackOneMonth    Lookback = "1mo"
	LookbackThreeMonths Lookback = "3mo"
	LookbackSixMonths   Lookback = "6mo"
	LookbackOneYear     Lookback = "1y"
)

// Valid reports whether the lookback is one the quote source understands.
func (l Lookback) Valid() bool {
	switch l {
	case LookbackOneDay, LookbackFiveDays, LookbackOneMonth,
		LookbackThreeMonths, LookbackSixMonths, LookbackOneYear:
		return true
	}
	return false
}

// QuotePoint is one daily close.
type QuotePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// QuoteSeries is a chronological sequence of daily closes for one symbol.
// It lives only for the duration of a fetch and is never persisted.
type QuoteSeries struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Currency string       `json:"currency"`
	Points   []QuotePoint `json:"points"`
}

// Len returns the number of points in the series.
func (s QuoteSeries) Len() int {
	return len(s.Points)
}
