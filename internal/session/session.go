// Package session owns per-visitor state. Each session carries its own
// watchlist and is addressed by an encrypted fernet token wrapping its ID.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/alphapocket/pocket-backend/internal/apperrors"
	"github.com/alphapocket/pocket-backend/internal/watchlist"
)

// MaxTokenAge bounds how long a token verifies, independent of idle expiry.
const MaxTokenAge = 30 * 24 * time.Hour

// Session is one visitor's state.
type Session struct {
	ID        uuid.UUID
	Watchlist *watchlist.Store
	CreatedAt time.Time

	lastSeen time.Time
}

// Manager issues and resolves session tokens.
type Manager struct {
	mu       sync.Mutex
	key      *fernet.Key
	idleTTL  time.Duration
	limit    int
	now      func() time.Time
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager signing tokens with key. Sessions idle longer
// than idleTTL are dropped by Sweep; idleTTL <= 0 keeps them forever.
//
// Parameters:
//   - key: fernet key used to encrypt and verify tokens
//   - idleTTL: idle lifetime of a session
//   - now: clock used for idle tracking; nil means time.Now
func NewManager(key *fernet.Key, idleTTL time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		key:      key,
		idleTTL:  idleTTL,
		now:      now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// SetLimit caps the number of live sessions. Once the cap is reached, Create
// evicts the least recently seen session. n <= 0 removes the cap.
func (m *Manager) SetLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = n
}

// Transient returns a session holding the default watchlist that is not
// stored and has no token. It serves read-only requests from visitors that
// have not changed anything yet.
func (m *Manager) Transient() *Session {
	now := m.now()
	return &Session{
		ID:        uuid.New(),
		Watchlist: watchlist.NewDefault(),
		CreatedAt: now,
		lastSeen:  now,
	}
}

// Create starts a session with the default watchlist and returns its token.
func (m *Manager) Create() (*Session, string, error) {
	id := uuid.New()
	tok, err := fernet.EncryptAndSign([]byte(id.String()), m.key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	now := m.now()
	s := &Session{
		ID:        id,
		Watchlist: watchlist.NewDefault(),
		CreatedAt: now,
		lastSeen:  now,
	}

	m.mu.Lock()
	if m.limit > 0 && len(m.sessions) >= m.limit {
		m.evictOldest()
	}
	m.sessions[id] = s
	m.mu.Unlock()

	return s, string(tok), nil
}

// Resolve verifies token and returns its live session, marking it as seen.
//
// Errors:
//   - apperrors.ErrInvalidSession: token is malformed, forged or too old
//   - apperrors.ErrSessionNotFound: token is valid but the session is gone or idle-expired
func (m *Manager) Resolve(token string) (*Session, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), MaxTokenAge, []*fernet.Key{m.key})
	if msg == nil {
		return nil, apperrors.ErrInvalidSession
	}
	id, err := uuid.ParseBytes(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidSession, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	now := m.now()
	if m.expired(s, now) {
		delete(m.sessions, id)
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	s.lastSeen = now
	return s, nil
}

// Sweep removes idle sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictOldest drops the least recently seen session. Callers hold m.mu.
func (m *Manager) evictOldest() {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.lastSeen.Before(oldest.lastSeen) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.sessions, oldest.ID)
	}
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	return m.idleTTL > 0 && now.Sub(s.lastSeen) >= m.idleTTL
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
