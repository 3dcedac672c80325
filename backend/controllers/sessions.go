package controllers

import (
	"log"
	"sync"

	"project/backend/engine"
)

type sessionKey struct {
	userID    uint
	subjectID uint
}

// SessionManager hands out the per-learner, per-subject engine session.
// One session owns one course tree; the manager guarantees a single
// instance per key so all completion pipelines for that tree serialize.
type SessionManager struct {
	mu       sync.Mutex
	store    engine.Store
	logger   *log.Logger
	sessions map[sessionKey]*engine.Session
}

func NewSessionManager(store engine.Store, logger *log.Logger) *SessionManager {
	return &SessionManager{
		store:    store,
		logger:   logger,
		sessions: make(map[sessionKey]*engine.Session),
	}
}

// Get returns the session for (user, subject), creating it on first use.
// The second return reports whether the session already existed.
func (m *SessionManager) Get(userID, subjectID uint) (*engine.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{userID: userID, subjectID: subjectID}
	if s, ok := m.sessions[key]; ok {
		return s, true
	}
	s := engine.NewSession(m.store, m.logger, userID, subjectID)
	m.sessions[key] = s
	return s, false
}

// Drop discards a session so the next Get starts fresh.
func (m *SessionManager) Drop(userID, subjectID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionKey{userID: userID, subjectID: subjectID})
}
