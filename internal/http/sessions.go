package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kjstillabower/city-weather/internal/display"
	"github.com/kjstillabower/city-weather/internal/observability"
	"github.com/kjstillabower/city-weather/internal/query"
)

// SessionCookieName is the cookie carrying the browser session ID.
const SessionCookieName = "cw_session"

// Session is the in-memory state of one browser: its city query and its weather view.
type Session struct {
	ID      string
	Query   *query.Store
	Display *display.Display

	mu       sync.Mutex
	lastSeen time.Time
	corrID   string // of the most recent request
}

func (s *Session) setCorrelationID(id string) {
	s.mu.Lock()
	s.corrID = id
	s.mu.Unlock()
}

func (s *Session) correlationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.corrID
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Sessions is a registry of live sessions. Nothing is persisted; idle sessions are dropped by Sweep.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	ttl   time.Duration
	now   func() time.Time
}

// NewSessions returns an empty registry. Sessions idle longer than ttl are removed by Sweep.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the session for id and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// Create registers a new session owning d.
func (s *Sessions) Create(d *display.Display) *Session {
	sess := &Session{
		ID:       uuid.New().String(),
		Query:    query.NewStore(),
		Display:  d,
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.items[sess.ID] = sess
	n := len(s.items)
	s.mu.Unlock()
	observability.ActiveSessions.Set(float64(n))
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep removes sessions idle for longer than the TTL and returns how many were removed.
// Removed displays are unmounted so outstanding fetches resolve into nothing.
func (s *Sessions) Sweep() int {
	now := s.now()
	var expired []*Session

	s.mu.Lock()
	for id, sess := range s.items {
		if sess.idleSince(now) > s.ttl {
			expired = append(expired, sess)
			delete(s.items, id)
		}
	}
	n := len(s.items)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Display.Leave()
	}
	observability.ActiveSessions.Set(float64(n))
	return len(expired)
}

// SweepEvery runs Sweep on interval until ctx is done.
func (s *Sessions) SweepEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}
