package session

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. Injected so session lifecycle is
// deterministic under test; nil means time.Now.
type Clock func() time.Time

// Context is one visitor session: an explicit value with a bounded lifetime,
// not ambient state. The ID groups a visitor's events and is echoed back to
// the tracking client, which replays it on subsequent events.
type Context struct {
	ID        string
	StartedAt time.Time
	LastSeen  time.Time
}

// Manager mints and expires visitor sessions.
type Manager struct {
	ttl   time.Duration
	clock Clock
}

// NewManager creates a session manager with the given idle TTL.
func NewManager(ttl time.Duration, clock Clock) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{ttl: ttl, clock: clock}
}

// Start mints a fresh session.
func (m *Manager) Start() *Context {
	now := m.clock()
	return &Context{
		ID:        uuid.NewString(),
		StartedAt: now,
		LastSeen:  now,
	}
}

// Touch records activity on the session.
func (m *Manager) Touch(s *Context) {
	s.LastSeen = m.clock()
}

// Expired reports whether the session has been idle past its TTL.
func (m *Manager) Expired(s *Context) bool {
	return m.clock().Sub(s.LastSeen) > m.ttl
}

// Renew returns the session itself while it is live, or a fresh one once it
// has expired.
func (m *Manager) Renew(s *Context) *Context {
	if s == nil || m.Expired(s) {
		return m.Start()
	}
	m.Touch(s)
	return s
}
