package state

import (
	"sync"
)

// Manager tracks per-user dialog state. In-memory only; a restart drops all
// dialogs, which is acceptable for short flows like code entry.
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData // telegramID -> UserData
}

func NewManager() *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
	}
}

// GetState returns the user's current dialog state.
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		return userData.State
	}
	return StateNone
}

// SetState sets the user's dialog state. Setting StateNone removes the entry.
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	if _, exists := sm.states[telegramID]; !exists {
		sm.states[telegramID] = &UserData{
			State: state,
			Data:  make(map[string]interface{}),
		}
	} else {
		sm.states[telegramID].State = state
	}
}

// GetData reads a scratch value collected earlier in the dialog.
func (sm *Manager) GetData(telegramID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		value, ok := userData.Data[key]
		return value, ok
	}
	return nil, false
}

// SetData stores a scratch value for the current dialog.
func (sm *Manager) SetData(telegramID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.states[telegramID]; !exists {
		sm.states[telegramID] = &UserData{
			State: StateNone,
			Data:  make(map[string]interface{}),
		}
	}
	sm.states[telegramID].Data[key] = value
}

// ClearState drops the user's dialog state and scratch data.
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// GetAllData returns a copy of the user's scratch data.
func (sm *Manager) GetAllData(telegramID int64) map[string]interface{} {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData, exists := sm.states[telegramID]; exists {
		dataCopy := make(map[string]interface{})
		for k, v := range userData.Data {
			dataCopy[k] = v
		}
		return dataCopy
	}
	return nil
}
