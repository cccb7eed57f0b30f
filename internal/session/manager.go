package session

import (
	"log"
	"sync"
	"time"

	"github.com/Brandon541/BBS/internal/ratelimit"
)

// CleanupInterval is the minimum spacing between eviction sweeps.
const CleanupInterval = 300 * time.Second

// Manager owns the session table. All access goes through it; sessions
// themselves are single-caller and carry no locking.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	users   UserStore
	msgs    MessageStore
	limiter *ratelimit.Limiter

	lastCleanup time.Time
	now         func() time.Time
}

func NewManager(users UserStore, msgs MessageStore, limiter *ratelimit.Limiter) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		users:    users,
		msgs:     msgs,
		limiter:  limiter,
		now:      time.Now,
	}
	m.lastCleanup = m.now()
	return m
}

// SetClock replaces the time source for the manager and for every
// session it subsequently creates. Test hook.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
	m.lastCleanup = now()
}

// Dispatch routes one line of input to the session for sessionID,
// creating a fresh session when none exists or the existing one has
// expired. Ended sessions are removed from the table after their final
// response.
func (m *Manager) Dispatch(sessionID, ipAddress, input string) *Response {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok && !s.IsValid() {
		delete(m.sessions, sessionID)
		ok = false
	}
	if !ok {
		s = New(sessionID, ipAddress, m.users, m.msgs, m.limiter)
		s.SetClock(m.now)
		m.sessions[sessionID] = s
		// A replaced or brand-new session always starts at the banner,
		// whatever input arrived with the request.
		input = ""
	}
	m.mu.Unlock()

	resp := s.Process(input)

	if resp.SessionEnded {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
	}
	return resp
}

// End discards a session without waiting for a quit command. Used when
// a connection drops.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// EvictExpired removes sessions that have timed out. Sweeps are
// amortized: calls within CleanupInterval of the previous sweep are
// no-ops, so front ends may call this on every request.
func (m *Manager) EvictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.now().Sub(m.lastCleanup) < CleanupInterval {
		return 0
	}
	m.lastCleanup = m.now()

	evicted := 0
	for id, s := range m.sessions {
		if !s.IsValid() {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Printf("Evicted %d expired session(s)", evicted)
	}
	return evicted
}

// Count reports the number of live table entries, expired or not.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
