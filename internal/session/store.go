// Package session keeps the latest conversion result per browser session.
package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kfreiman/office2md/internal/conversion"
)

// CookieName is the cookie carrying the session id
const CookieName = "office2md_session"

// DefaultTTL is used when Config.TTL is zero
const DefaultTTL = 24 * time.Hour

// State is what a session remembers between requests
type State struct {
	Result    *conversion.Result
	UpdatedAt time.Time
}

// Config holds configuration for the session store
type Config struct {
	TTL    time.Duration
	Logger *slog.Logger
	// Secure marks the session cookie as HTTPS-only
	Secure bool
}

// Store is an in-memory session store. A session expires after TTL without a
// Put or Get; expired sessions are dropped lazily on access.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	ttl      time.Duration
	secure   bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore creates an empty session store
func NewStore(config Config) *Store {
	if config.TTL == 0 {
		config.TTL = DefaultTTL
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		sessions: make(map[string]*State),
		ttl:      config.TTL,
		secure:   config.Secure,
		logger:   config.Logger,
		now:      time.Now,
	}
}

// ID returns the session id of r, issuing a new id when r has none. The cookie
// is written on every call so its lifetime follows the last request.
func (s *Store) ID(w http.ResponseWriter, r *http.Request) string {
	var id string
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		s.logger.DebugContext(r.Context(), "session created", "session_id", id)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Lookup returns the session id carried by r without issuing a cookie
func Lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Put replaces the result of session id
func (s *Store) Put(ctx context.Context, id string, result *conversion.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)
	s.sessions[id] = &State{Result: result, UpdatedAt: s.now()}
}

// Get returns the latest result of session id, or nil. A hit counts as
// activity and restarts the session's TTL.
func (s *Store) Get(ctx context.Context, id string) *conversion.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(ctx)
	if st, ok := s.sessions[id]; ok {
		st.UpdatedAt = s.now()
		return st.Result
	}
	return nil
}

// Clear forgets the result of session id
func (s *Store) Clear(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Store) sweepLocked(ctx context.Context) {
	cutoff := s.now().Add(-s.ttl)
	var expired int
	for id, st := range s.sessions {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.DebugContext(ctx, "expired sessions dropped", "count", expired)
	}
}
