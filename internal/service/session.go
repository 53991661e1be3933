package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spdash/dashboard/internal/domain"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("service: session not found")

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// SessionManager keeps one Controller per dashboard session
type SessionManager struct {
	fetcher UtilizationFetcher
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionManager creates a manager whose sessions expire after ttl of inactivity
func NewSessionManager(fetcher UtilizationFetcher, ttl time.Duration) *SessionManager {
	return &SessionManager{
		fetcher:  fetcher,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create starts a new session with an idle controller
func (m *SessionManager) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := NewController(m.fetcher)
	ctrl.OnChange = func(domain.SelectionState) { m.touch(id) }

	m.mu.Lock()
	m.sessions[id] = &session{controller: ctrl, lastSeen: m.now()}
	m.mu.Unlock()

	return id, ctrl
}

// Get returns the controller of a live session and refreshes its expiry
func (m *SessionManager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s.controller, nil
}

// touch marks a session active; selection changes count as activity
func (m *SessionManager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.lastSeen = m.now()
	}
}

// Remove ends a session, cancelling any in-flight fetch
func (m *SessionManager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.controller.Close()
	return nil
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the ttl and returns how many were removed
func (m *SessionManager) Sweep(now time.Time) int {
	var expired []*session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.controller.Close()
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is done
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := m.Sweep(t); n > 0 {
				log.Printf("sessions: expired %d idle sessions", n)
			}
		}
	}
}

// Close ends every session
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.controller.Close()
	}
}
