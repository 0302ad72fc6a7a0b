package session

import (
	"sync"
	"time"

	"github.com/nyxmesh/nyx-core/internal/defaults"
	"github.com/nyxmesh/nyx-core/telemetry"
)

// Manager owns the table of live sessions and periodically sweeps away ones
// that outlived their handshake deadline, went idle too long, or have sat in
// Closed/Failed past their grace period. One lock guards the table; each
// Session guards its own state, so two goroutines operating on disjoint
// sessions never contend.
type Manager struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
	nextID   uint32
	maxLen   int
	sink     telemetry.Sink

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewManager constructs an empty session table. maxSessions <= 0 falls back
// to defaults.MaxSessions.
func NewManager(maxSessions int, sink telemetry.Sink) *Manager {
	if maxSessions <= 0 {
		maxSessions = defaults.MaxSessions
	}
	if sink == nil {
		sink = telemetry.Noop
	}
	return &Manager{
		sessions: make(map[uint32]*Session),
		maxLen:   maxSessions,
		sink:     sink,
		stopCh:   make(chan struct{}),
	}
}

// NewClientSession allocates an id and registers a new client-role session.
func (m *Manager) NewClientSession(localCaps CapabilitySet) (*Session, error) {
	return m.newSession(RoleInitiator, localCaps)
}

// NewServerSession allocates an id and registers a new server-role session.
func (m *Manager) NewServerSession(localCaps CapabilitySet) (*Session, error) {
	return m.newSession(RoleResponder, localCaps)
}

func (m *Manager) newSession(role Role, localCaps CapabilitySet) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxLen {
		return nil, ErrTableFull
	}
	id := m.allocateIDLocked()
	var s *Session
	if role == RoleInitiator {
		s = NewClientSession(id, localCaps, m.sink)
	} else {
		s = NewServerSession(id, localCaps, m.sink)
	}
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) allocateIDLocked() uint32 {
	for {
		m.nextID++
		id := m.nextID
		if id == 0 {
			continue
		}
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}

// Lookup returns the session registered under id, if any.
func (m *Manager) Lookup(id uint32) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove unregisters and closes the session with the given id.
func (m *Manager) Remove(id uint32) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		_ = s.Close()
	}
}

// Len reports the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts expired sessions once and reports how many were removed.
// Handshaking sessions older than defaults.HandshakeTimeout, established
// sessions idle past defaults.IdleTimeout, and closed/failed sessions older
// than defaults.ClosedGrace past their last activity are all evicted.
func (m *Manager) Sweep(now time.Time) int {
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		status := s.Status()
		switch status.State {
		case ClientHandshaking, ServerHandshaking:
			if now.Sub(s.handshakeStarted) > defaults.HandshakeTimeout {
				expired = append(expired, s)
				delete(m.sessions, id)
			}
		case Established:
			if now.Sub(status.LastActivity) > defaults.IdleTimeout {
				expired = append(expired, s)
				delete(m.sessions, id)
			}
		case Closed, Failed:
			if now.Sub(status.LastActivity) > defaults.ClosedGrace {
				expired = append(expired, s)
				delete(m.sessions, id)
			}
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		_ = s.Close()
	}
	return len(expired)
}

// Run starts a background goroutine that calls Sweep on the given interval
// until Stop is called.
func (m *Manager) Run(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep(time.Now())
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the background sweep goroutine started by Run.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}
