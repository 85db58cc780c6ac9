package picker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexgen-digital/agenda-bookings/internal/schedule"
	"github.com/nexgen-digital/agenda-bookings/pkg/logger"
)

// Store holds picker sessions in memory. Sessions are ephemeral browser
// state; nothing here survives a restart, and nothing should.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	loc      *time.Location
	now      func() time.Time // injectable for testing
}

func NewStore(ttl time.Duration, loc *time.Location) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		loc:      loc,
		now:      time.Now,
	}
}

// Create opens a new session anchored at the Monday of the current week.
func (st *Store) Create() *Session {
	now := st.now().In(st.loc)
	session := &Session{
		ID:         uuid.New().String(),
		weekAnchor: schedule.StartOfWeek(now),
		lastSeen:   now,
	}

	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()

	return session
}

// Get returns a session and refreshes its idle deadline.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	session.mu.Lock()
	session.lastSeen = st.now()
	session.mu.Unlock()
	return session, true
}

// Sweep drops sessions idle past the TTL and returns how many were removed.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, session := range st.sessions {
		session.mu.Lock()
		idle := session.lastSeen.Before(cutoff)
		session.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper evicts idle sessions on an interval until ctx is canceled.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := st.Sweep(); removed > 0 {
					logger.Debug("Swept idle picker sessions", "removed", removed)
				}
			}
		}
	}()
}
