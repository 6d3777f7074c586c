package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

// Binding is the per-connection ephemeral association with a lobby.
// It never outlives the connection. Signal is the transport endpoint all
// lobby notifications for this connection go through.
type Binding struct {
	Lobby  domain.LobbyID
	IsHost bool
	Signal core.SignalConnection
}

// Member pairs a bound connection with its transport endpoint, captured
// before an unbind so teardown notices can still be delivered.
type Member struct {
	Conn   domain.ConnID
	Signal core.SignalConnection
}

// Registry maps live connections to their lobby bindings. One connection
// holds at most one binding; a connection must leave before joining again.
type Registry struct {
	mu       sync.RWMutex
	bindings map[domain.ConnID]Binding
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[domain.ConnID]Binding)}
}

func (r *Registry) Bind(conn domain.ConnID, lobby domain.LobbyID, isHost bool, sig core.SignalConnection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[conn]; ok {
		return ErrAlreadyBound
	}
	r.bindings[conn] = Binding{Lobby: lobby, IsHost: isHost, Signal: sig}
	log.Info().Str("module", "app.registry").Str("sid", string(conn)).Str("lobby", string(lobby)).Bool("host", isHost).Msg("bound session")
	return nil
}

func (r *Registry) Get(conn domain.ConnID) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bindings[conn]
	return b, ok
}

// UpdateSignal repoints an existing binding at a new transport, for a
// client that reconnects under the same connection id.
func (r *Registry) UpdateSignal(conn domain.ConnID, sig core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[conn]
	if !ok {
		return false
	}
	b.Signal = sig
	r.bindings[conn] = b
	log.Info().Str("module", "app.registry").Str("sid", string(conn)).Msg("signal updated")
	return true
}

// Unbind is idempotent; removing an absent binding is a no-op. This covers
// the disconnect-after-leave race.
func (r *Registry) Unbind(conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bindings[conn]; !ok {
		return
	}
	delete(r.bindings, conn)
	log.Info().Str("module", "app.registry").Str("sid", string(conn)).Msg("unbound session")
}
