package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
)

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client defines the interface for fetching chart data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QuerySymbol(ctx context.Context, symbol string, lookback model.Lookback) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying daily closes.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client.
// An empty baseURL selects DefaultBaseURL; tests point it at an httptest server.
//
// Returns:
//   - *FinanceClient: A new client instance ready for use
func NewFinanceClient(baseURL string) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts price data (open, close, high, low, volume) and metadata
// (symbol, currency, exchange) from the Yahoo response format.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present
//   - Timestamp and close arrays have matching lengths
//
// Points whose close is null are skipped.
//
// Parameters:
//   - yahooResult: Raw response from Yahoo Finance API
//
// Returns:
//   - PriceChart: Structured chart with indicators and metadata
//   - error: apperrors.ErrSymbolNotFound when the result carries no prices,
//     apperrors.ErrNetwork when the arrays are malformed
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, apperrors.ErrSymbolNotFound
	}
	result := yahooResult.Chart.Result[0]

	// delisted and data-less symbols come back as a bare meta block
	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no price data returned", apperrors.ErrSymbolNotFound)
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no close prices returned", apperrors.ErrSymbolNotFound)
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("%w: malformed chart: mismatched data lengths", apperrors.ErrNetwork)
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceOpen:  floatAt(quote.Open, i),
			PriceClose: *quote.Close[i],
			Volume:     intAt(quote.Volume, i),
			PriceHigh:  floatAt(quote.High, i),
			PriceLow:   floatAt(quote.Low, i),
		})
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

// Series converts the chart's closes into a decimal QuoteSeries.
// The long name is preferred for display, falling back to the short name.
func (c PriceChart) Series() model.QuoteSeries {
	name := c.LongName
	if name == "" {
		name = c.Shortname
	}
	points := make([]model.QuotePoint, len(c.Indicators))
	for i, ind := range c.Indicators {
		points[i] = model.QuotePoint{
			Date:  ind.Date,
			Close: decimal.NewFromFloat(ind.PriceClose),
		}
	}
	return model.QuoteSeries{
		Symbol:   c.Symbol,
		Name:     name,
		Currency: c.Currency,
		Points:   points,
	}
}

// QuerySymbol fetches daily price data for a symbol over the given lookback.
//
// The method uses Yahoo Finance's range-based query format (range=1mo etc.)
// with a fixed daily interval.
//
// Parameters:
//   - ctx: Bounds the request; expiry is reported as apperrors.ErrNetwork
//   - symbol: Normalized ticker symbol (e.g., "AAPL", "2330.TW")
//   - lookback: Range to request
//
// Returns:
//   - Response: Raw API response containing price data
//   - error: apperrors.ErrSymbolNotFound for unknown symbols, apperrors.ErrNetwork
//     for transport failures, refusals and undecodable responses
func (c *FinanceClient) QuerySymbol(ctx context.Context, symbol string, lookback model.Lookback) (Response, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(string(lookback)))

	result, err := c.queryYahoo(ctx, addr)
	if err != nil {
		return Response{}, fmt.Errorf("%s: %w", symbol, err)
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s: %w", symbol, apperrors.ErrSymbolNotFound)
	}

	return result, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for making requests, reading responses,
// parsing JSON, and classifying API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, addr string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", apperrors.ErrNetwork, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return Response{}, fmt.Errorf("%w: yahoo returned %s", apperrors.ErrNetwork, resp.Status)
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode == http.StatusNotFound {
			return Response{}, apperrors.ErrSymbolNotFound
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return Response{}, fmt.Errorf("%w: yahoo returned %s", apperrors.ErrNetwork, resp.Status)
		}
		return Response{}, fmt.Errorf("%w: failed to decode chart response: %v", apperrors.ErrNetwork, err)
	}

	// Anything but "Not Found" (Unauthorized, Forbidden, rate limits) means the
	// source refused to answer, not that the symbol is unknown.
	if response.Chart.Error != nil {
		if strings.EqualFold(response.Chart.Error.Code, "Not Found") {
			return response, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, response.Chart.Error.Description)
		}
		return response, fmt.Errorf("%w: yahoo error: %s: %s", apperrors.ErrNetwork, response.Chart.Error.Code, response.Chart.Error.Description)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Response{}, apperrors.ErrSymbolNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return Response{}, fmt.Errorf("%w: yahoo returned %s", apperrors.ErrNetwork, resp.Status)
	}

	return response, nil
}

func floatAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}
