package core

import (
	"sync"

	"github.com/auralab/auralab/internal/domain"
)

// LobbyInfo is a registry listing entry.
type LobbyInfo struct {
	ID          domain.LobbyID `json:"lobby"`
	MemberCount int            `json:"member_count"`
}

// LobbyManager is the process-wide table of active lobbies. Creation is
// atomic per id: of two concurrent creators exactly one wins and becomes
// host, the other observes the existing session and joins it.
type LobbyManager struct {
	mu       sync.RWMutex
	lobbies  map[domain.LobbyID]*LobbySession
	maxSlots int
}

func NewLobbyManager(maxSlots int) *LobbyManager {
	return &LobbyManager{
		lobbies:  make(map[domain.LobbyID]*LobbySession),
		maxSlots: maxSlots,
	}
}

// GetOrCreate returns the session for id, creating it with host as the
// host seat when absent. created reports whether this call won creation.
func (m *LobbyManager) GetOrCreate(id domain.LobbyID, host domain.ConnID) (*LobbySession, bool) {
	m.mu.RLock()
	lobby, ok := m.lobbies[id]
	m.mu.RUnlock()
	if ok {
		return lobby, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if lobby, ok = m.lobbies[id]; ok {
		return lobby, false
	}
	lobby = NewLobbySession(id, host, m.maxSlots)
	m.lobbies[id] = lobby
	return lobby, true
}

func (m *LobbyManager) Get(id domain.LobbyID) (*LobbySession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lobby, ok := m.lobbies[id]
	return lobby, ok
}

// Remove tears the registry entry down. The id may be reused by a later
// GetOrCreate.
func (m *LobbyManager) Remove(id domain.LobbyID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lobbies, id)
}

func (m *LobbyManager) List() []LobbyInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LobbyInfo, 0, len(m.lobbies))
	for id, l := range m.lobbies {
		out = append(out, LobbyInfo{ID: id, MemberCount: l.MemberCount()})
	}
	return out
}
