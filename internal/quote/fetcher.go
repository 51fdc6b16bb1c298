// Package quote fetches daily close series for sets of symbols, reporting
// failures per symbol and memoizing recent batches.
package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/yahoo"
)

// Batch is the result of one fetch. Every requested (normalized) symbol
// appears in exactly one of Series and Errors. Batches may be shared between
// callers through the cache and must be treated as read-only.
type Batch struct {
	Series    map[string]model.QuoteSeries
	Errors    map[string]error
	Lookback  model.Lookback
	FetchedAt time.Time
}

func newBatch(lookback model.Lookback, at time.Time) Batch {
	return Batch{
		Series:    make(map[string]model.QuoteSeries),
		Errors:    make(map[string]error),
		Lookback:  lookback,
		FetchedAt: at,
	}
}

func (b Batch) hasNetworkError() bool {
	for _, err := range b.Errors {
		if errors.Is(err, apperrors.ErrNetwork) {
			return true
		}
	}
	return false
}

// Options configures a Fetcher.
type Options struct {
	// Timeout bounds a whole batch, not each symbol.
	Timeout time.Duration
	// CacheTTL is how long a batch is reused; zero disables the cache.
	CacheTTL time.Duration
	// NumericSuffix is appended to bare four-digit codes.
	NumericSuffix string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Fetcher retrieves quote series from the chart API.
type Fetcher struct {
	client  yahoo.Client
	timeout time.Duration
	suffix  string
	now     func() time.Time
	cache   *Cache
	group   singleflight.Group
}

// NewFetcher creates a Fetcher backed by client.
func NewFetcher(client yahoo.Client, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.NumericSuffix == "" {
		opts.NumericSuffix = yahoo.DefaultNumericSuffix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		client:  client,
		timeout: opts.Timeout,
		suffix:  opts.NumericSuffix,
		now:     opts.Now,
		cache:   NewCache(opts.CacheTTL, opts.Now),
	}
}

// Normalize applies the fetcher's symbol normalization to one input.
func (f *Fetcher) Normalize(symbol string) string {
	return yahoo.NormalizeSymbol(symbol, f.suffix)
}

// Cache exposes the memo cache so a scheduler can purge it.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Fetch returns the series for every symbol, keyed by normalized symbol.
// Empty inputs are ignored and duplicates collapse to one request.
//
// Concurrent calls for the same key share a single round of requests. The
// shared round is detached from any one caller's cancellation and bounded only
// by the fetcher's timeout; a caller whose ctx ends stops waiting and gets
// network errors for its symbols while the others still receive the result.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, lookback model.Lookback) Batch {
	normalized := f.normalizeAll(symbols)
	if len(normalized) == 0 {
		return newBatch(lookback, f.now())
	}

	key := cacheKey(normalized, lookback)
	if batch, ok := f.cache.Get(key); ok {
		return batch
	}
	if err := ctx.Err(); err != nil {
		return f.abandoned(normalized, lookback, err)
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		batch := f.fetch(shared, normalized, lookback)
		if !batch.hasNetworkError() {
			f.cache.Put(key, batch)
		}
		return batch, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Batch)
	case <-ctx.Done():
		return f.abandoned(normalized, lookback, ctx.Err())
	}
}

// abandoned reports every symbol as a network error for a caller that stopped
// waiting.
func (f *Fetcher) abandoned(symbols []string, lookback model.Lookback, cause error) Batch {
	batch := newBatch(lookback, f.now())
	for _, symbol := range symbols {
		batch.Errors[symbol] = fmt.Errorf("%s: %w: %v", symbol, apperrors.ErrNetwork, cause)
	}
	return batch
}

func (f *Fetcher) fetch(ctx context.Context, symbols []string, lookback model.Lookback) Batch {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	batch := newBatch(lookback, f.now())
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			batch.Errors[symbol] = fmt.Errorf("%s: %w: %v", symbol, apperrors.ErrNetwork, err)
			continue
		}

		series, err := f.fetchOne(ctx, symbol, lookback)
		if err != nil {
			log.Printf("quote fetch failed for %s: %v", symbol, err)
			batch.Errors[symbol] = err
			continue
		}
		batch.Series[symbol] = series
	}
	return batch
}

func (f *Fetcher) fetchOne(ctx context.Context, symbol string, lookback model.Lookback) (model.QuoteSeries, error) {
	raw, err := f.client.QuerySymbol(ctx, symbol, lookback)
	if err != nil {
		return model.QuoteSeries{}, err
	}
	chart, err := f.client.ParseChart(raw)
	if err != nil {
		return model.QuoteSeries{}, fmt.Errorf("%s: %w", symbol, err)
	}
	series := chart.Series()
	// results are keyed by what was asked for, not by what the source echoes back
	series.Symbol = symbol
	return series, nil
}

func (f *Fetcher) normalizeAll(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n := f.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func cacheKey(sortedSymbols []string, lookback model.Lookback) string {
	return string(lookback) + "|" + strings.Join(sortedSymbols, ",")
}
