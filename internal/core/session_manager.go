package core

import "sync"

// SessionFactory builds a fresh session with its own conversation store.
type SessionFactory func() *Session

// SessionManager keeps one in-memory session per user email. Conversations
// are deliberately not durable; only the admin collections persist.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  SessionFactory
}

func NewSessionManager(factory SessionFactory) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// Get returns the session for the given email, creating it on first use.
func (m *SessionManager) Get(email string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[email]; ok {
		return session
	}
	session := m.factory()
	m.sessions[email] = session
	return session
}

// Drop removes a session. In-flight enrichment completions for it are
// harmless; they no-op against the abandoned conversation store.
func (m *SessionManager) Drop(email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, email)
}
