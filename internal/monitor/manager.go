package monitor

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/listenupapp/autosort/internal/errors"
	"github.com/listenupapp/autosort/internal/organizer"
)

// Manager owns at most one live session per folder.
type Manager struct {
	template Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Every session is built from template with
// its Folder replaced.
func NewManager(template Options) *Manager {
	return &Manager{
		template: template,
		sessions: make(map[string]*Session),
	}
}

// Start begins watching folder. The folder must be an existing directory
// (CONFIG error otherwise). A folder that already has a session which has
// not stopped yields ALREADY_EXISTS.
func (m *Manager) Start(ctx context.Context, folder string) (*Session, error) {
	abs, err := organizer.CleanFolder(folder)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[abs]; ok {
		select {
		case <-existing.Done():
		default:
			m.mu.Unlock()
			return nil, errors.AlreadyExistsf("%s is already being watched", abs)
		}
	}

	opts := m.template
	opts.Folder = abs
	session := NewSession(opts)
	m.sessions[abs] = session
	m.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		m.mu.Lock()
		if m.sessions[abs] == session {
			delete(m.sessions, abs)
		}
		m.mu.Unlock()
		return nil, err
	}
	return session, nil
}

// Stop stops and forgets the session for folder. NOT_FOUND if there is none.
func (m *Manager) Stop(folder string) error {
	key, err := filepath.Abs(folder)
	if err != nil {
		return errors.Wrapf(err, errors.CodeValidation, "resolve %s", folder)
	}

	m.mu.Lock()
	session, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()

	if !ok {
		return errors.NotFoundf("%s is not being watched", key)
	}
	session.Stop()
	return nil
}

// StopAll stops every session concurrently and waits for them.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	clear(m.sessions)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Go(s.Stop)
	}
	wg.Wait()
}

// Get returns the session for folder, if any.
func (m *Manager) Get(folder string) (*Session, bool) {
	key, err := filepath.Abs(folder)
	if err != nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// List returns the status of every known session, sorted by folder.
// Sessions that died on their own stay listed until stopped or restarted.
func (m *Manager) List() []Status {
	m.mu.Lock()
	statuses := make([]Status, 0, len(m.sessions))
	for _, s := range m.sessions {
		statuses = append(statuses, s.Status())
	}
	m.mu.Unlock()

	slices.SortFunc(statuses, func(a, b Status) int {
		return strings.Compare(a.Folder, b.Folder)
	})
	return statuses
}
