package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/face-filter/internal/catalog"
)

// ErrSessionNotFound is returned for unknown or already deleted session ids.
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the mounted sessions.
type Manager struct {
	ctx     context.Context
	catalog *catalog.Catalog
	opts    Options

	sessions  map[string]*Session
	onUnmount []func(id string)
	mu        sync.RWMutex
}

// NewManager creates a manager. Sessions live until deleted or CloseAll, regardless of
// the request that created them; ctx only bounds detector loading and detection.
func NewManager(ctx context.Context, cat *catalog.Catalog, opts Options) *Manager {
	return &Manager{
		ctx:      ctx,
		catalog:  cat,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// OnUnmount registers fn to run with the id of every session Delete or CloseAll tears
// down.
func (m *Manager) OnUnmount(fn func(id string)) {
	m.mu.Lock()
	m.onUnmount = append(m.onUnmount, fn)
	m.mu.Unlock()
}

func (m *Manager) unmounted(id string) {
	m.mu.RLock()
	hooks := m.onUnmount
	m.mu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
}

// Create mounts a new session.
func (m *Manager) Create() *Session {
	s := New(m.ctx, uuid.NewString(), m.catalog, m.opts)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns a mounted session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete unmounts and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	m.unmounted(id)
	return nil
}

// List returns all mounted sessions.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list
}

// Len returns the number of mounted sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll unmounts every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, s := range sessions {
		s.Close()
		m.unmounted(id)
	}
}
