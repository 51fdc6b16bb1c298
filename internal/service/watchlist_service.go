package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/events"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/quote"
	"github.com/alphapocket/pocket-backend/internal/session"
	"github.com/alphapocket/pocket-backend/internal/watchlist"
)

// QuoteLookback is the chart range used for watchlist quotes and search. Five
// daily points are enough to survive a weekend or a holiday and still have a
// prior close.
const QuoteLookback = model.LookbackFiveDays

const publishTimeout = 2 * time.Second

// EventPublisher receives watchlist change events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.WatchlistEvent) error
}

// SymbolAddResult reports what adding a symbol did.
type SymbolAddResult struct {
	Category        string            `json:"category"`
	Symbol          string            `json:"symbol"`
	CategoryOutcome watchlist.Outcome `json:"categoryOutcome,omitempty"`
	SymbolOutcome   watchlist.Outcome `json:"symbolOutcome"`
}

// WatchlistService handles watchlist edits and quotes for a session's watchlist.
type WatchlistService struct {
	fetcher   *quote.Fetcher
	publisher EventPublisher
	now       func() time.Time
}

// NewWatchlistService creates a new WatchlistService. publisher may be nil,
// in which case no events are emitted.
func NewWatchlistService(fetcher *quote.Fetcher, publisher EventPublisher) *WatchlistService {
	return &WatchlistService{
		fetcher:   fetcher,
		publisher: publisher,
		now:       time.Now,
	}
}

// Categories returns the session's categories with their symbols.
func (s *WatchlistService) Categories(sess *session.Session) []watchlist.Category {
	return sess.Watchlist.Snapshot()
}

// AddCategory creates a category in the session's watchlist.
func (s *WatchlistService) AddCategory(ctx context.Context, sess *session.Session, name string) (watchlist.Outcome, error) {
	outcome, err := sess.Watchlist.AddCategory(name)
	if err != nil {
		return "", err
	}
	if outcome == watchlist.Created {
		s.publish(ctx, sess, events.CategoryAdded, strings.TrimSpace(name), "")
	}
	return outcome, nil
}

// AddSymbol normalizes symbol and adds it to category. When create is set the
// category is created first if it does not exist.
func (s *WatchlistService) AddSymbol(ctx context.Context, sess *session.Session, category, symbol string, create bool) (SymbolAddResult, error) {
	sym := s.fetcher.Normalize(symbol)
	category = strings.TrimSpace(category)
	result := SymbolAddResult{Category: category, Symbol: sym}

	var err error
	if create {
		result.CategoryOutcome, result.SymbolOutcome, err = sess.Watchlist.AddCategoryWithSymbol(category, sym)
	} else {
		result.SymbolOutcome, err = sess.Watchlist.AddSymbol(category, sym)
	}
	if err != nil {
		return SymbolAddResult{}, err
	}

	if result.CategoryOutcome == watchlist.Created {
		s.publish(ctx, sess, events.CategoryAdded, category, "")
	}
	if result.SymbolOutcome == watchlist.Added {
		s.publish(ctx, sess, events.SymbolAdded, category, sym)
	}
	return result, nil
}

// Quotes fetches the latest quote for every symbol in category. Symbols that
// could not be quoted carry their error; the call fails only for an unknown
// category.
func (s *WatchlistService) Quotes(ctx context.Context, sess *session.Session, category string) ([]model.PositionResult, error) {
	symbols, err := sess.Watchlist.Symbols(category)
	if err != nil {
		return nil, err
	}

	batch := s.fetcher.Fetch(ctx, symbols, QuoteLookback)
	rows := make([]model.PositionResult, len(symbols))
	for i, sym := range symbols {
		rows[i] = quoteRow(s.fetcher.Normalize(sym), batch)
	}
	return rows, nil
}

// Search normalizes a free-text query and quotes it.
//
// Errors:
//   - apperrors.ErrInvalidSymbol: query is blank
//   - apperrors.ErrSymbolNotFound, apperrors.ErrNetwork: the fetch failed
//   - engine errors when the series cannot be priced
func (s *WatchlistService) Search(ctx context.Context, query string) (model.PositionResult, error) {
	sym := s.fetcher.Normalize(query)
	if sym == "" {
		return model.PositionResult{}, apperrors.ErrInvalidSymbol
	}

	row := quoteRow(sym, s.fetcher.Fetch(ctx, []string{sym}, QuoteLookback))
	if row.Err != nil {
		return model.PositionResult{}, row.Err
	}
	return row, nil
}

// quoteRow prices a single share of sym so the engine's change figures can be
// reused for plain quotes.
func quoteRow(sym string, batch quote.Batch) model.PositionResult {
	unit := model.Position{Symbol: sym, Shares: decimal.NewFromInt(1), AvgCost: decimal.Zero}
	row := model.PositionResult{Symbol: sym}

	ps, err := resolvePosition(unit, batch.Series, batch.Errors)
	if err != nil {
		row.Err = err
		return row
	}
	row.Name = ps.Name
	row.Snapshot = &ps
	return row
}

func (s *WatchlistService) publish(ctx context.Context, sess *session.Session, eventType, category, symbol string) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := events.WatchlistEvent{
		EventType: eventType,
		SessionID: sess.ID.String(),
		Category:  category,
		Symbol:    symbol,
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
