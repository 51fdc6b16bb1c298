package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined closes per symbol instead of making actual API calls.
// Symbols without configured closes or errors are reported as not found.
type MockYahooClient struct {
	mu       sync.Mutex
	closes   map[string][]float64
	errors   map[string]error
	currency map[string]string
	queries  map[string]int
	// QueryCount tracks how many times QuerySymbol was called
	QueryCount int
}

// NewMockYahooClient creates a new mock Yahoo client with no symbols configured.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		closes:   make(map[string][]float64),
		errors:   make(map[string]error),
		currency: make(map[string]string),
		queries:  make(map[string]int),
	}
}

// WithCloses configures the daily closes returned for symbol, oldest first.
func (m *MockYahooClient) WithCloses(symbol string, closes ...float64) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes[symbol] = closes
	return m
}

// WithCurrency sets the currency reported in symbol's metadata.
func (m *MockYahooClient) WithCurrency(symbol, currency string) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currency[symbol] = currency
	return m
}

// WithError configures the mock to return err for symbol.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[symbol] = err
	return m
}

// QueriesFor returns how many times symbol was queried.
func (m *MockYahooClient) QueriesFor(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queries[symbol]
}

// Count returns the total number of queries.
func (m *MockYahooClient) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCount
}

// QuerySymbol returns the configured response or error for symbol.
func (m *MockYahooClient) QuerySymbol(ctx context.Context, symbol string, _ model.Lookback) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCount++
	m.queries[symbol]++

	if err := ctx.Err(); err != nil {
		return yahoo.Response{}, fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	}
	if err, ok := m.errors[symbol]; ok {
		return yahoo.Response{}, err
	}
	closes, ok := m.closes[symbol]
	if !ok {
		return yahoo.Response{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrSymbolNotFound)
	}
	currency := m.currency[symbol]
	if currency == "" {
		currency = "USD"
	}
	return CreateMockYahooResponse(symbol, currency, closes), nil
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient("").ParseChart(yahooResult)
}

// CreateMockYahooResponse creates a mock chart response with one daily close
// per value, the last one dated yesterday.
func CreateMockYahooResponse(symbol, currency string, closes []float64) yahoo.Response {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	days := len(closes)
	timestamps := make([]int64, days)
	closePtrs := make([]*float64, days)
	volumes := make([]*int64, days)
	for i := range closes {
		timestamps[i] = yesterday.AddDate(0, 0, -days+i+1).Unix()
		closePrice := closes[i]
		volume := int64(1000000 + i*10000)
		closePtrs[i] = &closePrice
		volumes[i] = &volume
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:    symbol,
						Currency:  currency,
						LongName:  symbol + " Inc.",
						Shortname: symbol,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{
							{
								Open:   closePtrs,
								High:   closePtrs,
								Low:    closePtrs,
								Close:  closePtrs,
								Volume: volumes,
							},
						},
					},
				},
			},
		},
	}
}
