package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hknc0/orbit-core/internal/tick"
)

// Table is the registry of every currently connected session, keyed by
// the session's own id (not the player id it may control). It
// implements tick.Registry so the scheduler can iterate sessions each
// tick without knowing how they're stored.
type Table struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewTable returns an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[uuid.UUID]*Session)}
}

// Add registers a session.
func (t *Table) Add(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID()] = s
}

// Remove drops a session by id. A no-op if it isn't present.
func (t *Table) Remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Get looks up a session by id.
func (t *Table) Get(id uuid.UUID) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Count reports the number of connected sessions.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// ForEach implements tick.Registry.
func (t *Table) ForEach(fn func(tick.Session)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.sessions {
		fn(s)
	}
}

// EvictIdle removes and returns every session whose last activity is
// older than maxIdle as of now.
func (t *Table) EvictIdle(now time.Time, maxIdle time.Duration) []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	var evicted []*Session
	for id, s := range t.sessions {
		if s.IdleSince(now) >= maxIdle {
			evicted = append(evicted, s)
			delete(t.sessions, id)
		}
	}
	return evicted
}

// RunIdleEviction periodically sweeps the table for idle sessions,
// calling onEvict for each one removed (the caller is expected to close
// the underlying connection there). It runs until stop is closed.
func (t *Table) RunIdleEviction(maxIdle time.Duration, interval time.Duration, stop <-chan struct{}, onEvict func(*Session)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			for _, s := range t.EvictIdle(now, maxIdle) {
				if onEvict != nil {
					onEvict(s)
				}
			}
		case <-stop:
			return
		}
	}
}
