package testutil

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/alphapocket/pocket-backend/internal/events"
	"github.com/alphapocket/pocket-backend/internal/model"
	"github.com/alphapocket/pocket-backend/internal/quote"
	"github.com/alphapocket/pocket-backend/internal/repository"
	"github.com/alphapocket/pocket-backend/internal/service"
	"github.com/alphapocket/pocket-backend/internal/session"
)

// NewTestFetcher creates an uncached fetcher backed by client.
func NewTestFetcher(t *testing.T, client *MockYahooClient) *quote.Fetcher {
	t.Helper()
	return quote.NewFetcher(client, quote.Options{Timeout: 5 * time.Second})
}

func NewTestPortfolioService(t *testing.T, db *sql.DB, client *MockYahooClient) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewPositionRepository(db),
		NewTestFetcher(t, client),
		model.LookbackOneMonth,
	)
}

func NewTestWatchlistService(t *testing.T, client *MockYahooClient, publisher service.EventPublisher) *service.WatchlistService {
	t.Helper()

	return service.NewWatchlistService(NewTestFetcher(t, client), publisher)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db, map[string]bool{"watchlist_events": false})
}

// NewTestSessionManager creates a session manager with a fresh key and a one hour idle TTL.
func NewTestSessionManager(t *testing.T) *session.Manager {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate session key: %v", err)
	}
	return session.NewManager(&key, time.Hour, nil)
}

// NewTestSession creates a session with the default watchlist.
func NewTestSession(t *testing.T) *session.Session {
	t.Helper()

	s, _, err := NewTestSessionManager(t).Create()
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return s
}

// NewSeededMockYahooClient returns a mock priced for the seeded positions.
// Each symbol moves from its first to its last close over five days.
func NewSeededMockYahooClient() *MockYahooClient {
	return NewMockYahooClient().
		WithCloses("TSLA", 205, 200, 198, 200, 220).
		WithCloses("NVDA", 480, 490, 495, 500, 450).
		WithCloses("AAPL", 180, 182, 185, 190, 190).
		WithCloses("BTC-USD", 62000, 63000, 64000, 65000, 66000)
}

// RecordingPublisher collects published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.WatchlistEvent
	// Err, when set, is returned from every Publish call after recording.
	Err error
}

// Publish records event.
func (p *RecordingPublisher) Publish(_ context.Context, event events.WatchlistEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the recorded events.
func (p *RecordingPublisher) Events() []events.WatchlistEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.WatchlistEvent(nil), p.events...)
}
