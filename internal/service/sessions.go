package service

import "sync"

// Sessions holds the per-chat calendar sessions for the lifetime of the
// process. One Telegram user gets at most one live session; opening a new
// calendar replaces the old one.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[int64]*CalendarSession
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[int64]*CalendarSession)}
}

// Get returns the user's live calendar session, or nil.
func (m *Sessions) Get(telegramID int64) *CalendarSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[telegramID]
}

// Put installs the user's calendar session, replacing any previous one.
func (m *Sessions) Put(telegramID int64, s *CalendarSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[telegramID] = s
}

// Delete drops the user's calendar session.
func (m *Sessions) Delete(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, telegramID)
}
