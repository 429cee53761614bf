package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pkt.systems/pslog"

	"github.com/dshills/snipstorm/internal/catalog"
	"github.com/dshills/snipstorm/internal/process"
)

// Errors returned by the manager.
var (
	// ErrUnknownSnippet is returned when expanding a name the catalog
	// does not hold.
	ErrUnknownSnippet = errors.New("unknown snippet")

	// ErrUnknownSession is returned for an unrecognized session ID.
	ErrUnknownSession = errors.New("unknown session")
)

// Manager serves concurrent expansion sessions from a shared catalog.
// Sessions are independent graphs; the manager only synchronizes its
// own session map and the shared read-only catalog.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	registry   *catalog.Registry
	supervisor *process.Supervisor
	opts       []Option
}

// NewManager creates a manager over a catalog. The given options are
// applied to every session it expands, after the shared bus and
// supervisor wiring.
func NewManager(registry *catalog.Registry, opts ...Option) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		registry:   registry,
		supervisor: process.NewSupervisor(),
		opts:       opts,
	}
}

// Expand instantiates the named snippet into a new session.
func (m *Manager) Expand(ctx context.Context, name string) (*Session, error) {
	def, ok := m.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownSnippet)
	}

	opts := append([]Option{WithSupervisor(m.supervisor)}, m.opts...)
	s, err := New(def, opts...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	pslog.Ctx(ctx).With("snippet", name).With("session", s.ID).Debug("snippet expanded")
	return s, nil
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Dismiss destroys a session's graph. The session must not be used
// afterwards; the whole arena is dropped with it.
func (m *Manager) Dismiss(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%q: %w", id, ErrUnknownSession)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown dismisses every session and stops the shared supervisor,
// giving running interpreters the grace period to exit.
func (m *Manager) Shutdown(grace time.Duration) {
	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	m.supervisor.Shutdown(grace)
}
