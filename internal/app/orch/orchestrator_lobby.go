package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

// CreateOrJoin puts conn into the lobby. A missing lobby is created with
// conn as host; of two concurrent creators for the same id exactly one
// wins, the other joins the winner's lobby in the requested role.
func (o *Orchestrator) CreateOrJoin(conn domain.ConnID, lobbyID domain.LobbyID, role domain.SlotRole, sig core.SignalConnection) (JoinResult, error) {
	if _, bound := o.Registry.Get(conn); bound {
		return JoinResult{}, app.ErrAlreadyBound
	}

	lobby, created := o.Lobbies.GetOrCreate(lobbyID, conn)
	if created {
		if err := o.Registry.Bind(conn, lobbyID, true, sig); err != nil {
			o.Lobbies.Remove(lobbyID)
			return JoinResult{}, err
		}
		log.Info().Str("module", "app.orch").Str("sid", string(conn)).Str("lobby", string(lobbyID)).Msg("lobby created, host seated")
		return JoinResult{State: lobby.Snapshot(), IsHost: true}, nil
	}

	idx, err := lobby.Join(conn, role)
	if err != nil {
		return JoinResult{}, err
	}
	if err := o.Registry.Bind(conn, lobbyID, false, sig); err != nil {
		lobby.Leave(conn)
		return JoinResult{}, err
	}
	log.Info().Str("module", "app.orch").Str("sid", string(conn)).Str("lobby", string(lobbyID)).Str("role", string(role)).Int("index", idx).Msg("joined lobby")
	return JoinResult{State: lobby.Snapshot(), Role: role, Index: idx}, nil
}

// Leave removes conn from its lobby. A departing host dissolves the lobby:
// every survivor is unbound and reported back for a lobby_closed notice.
// An emptied hostless lobby is removed from the table.
func (o *Orchestrator) Leave(conn domain.ConnID) (LeaveResult, error) {
	b, ok := o.Registry.Get(conn)
	if !ok {
		return LeaveResult{}, app.ErrNotBound
	}
	res := LeaveResult{Lobby: b.Lobby}

	lobby, ok := o.Lobbies.Get(b.Lobby)
	if !ok {
		// Lobby already gone (teardown race); drop the stale binding.
		o.Registry.Unbind(conn)
		return res, nil
	}

	wasHost, empty, _ := lobby.Leave(conn)
	o.Registry.Unbind(conn)
	res.WasHost = wasHost

	switch {
	case wasHost:
		res.Closed = true
		res.Survivors = o.teardown(lobby)
		log.Info().Str("module", "app.orch").Str("lobby", string(b.Lobby)).Int("survivors", len(res.Survivors)).Msg("host left, lobby dissolved")
	case empty:
		o.Lobbies.Remove(b.Lobby)
		log.Info().Str("module", "app.orch").Str("lobby", string(b.Lobby)).Msg("last member left, lobby removed")
	default:
		res.Survivors = o.membersOf(lobby.Conns())
	}
	return res, nil
}

// Disconnect is the transport-close hook. It resolves the binding, runs
// the leave flow, and guarantees no slot entry survives the connection.
func (o *Orchestrator) Disconnect(conn domain.ConnID) (LeaveResult, bool) {
	res, err := o.Leave(conn)
	if err != nil {
		// Never bound, or already left; Unbind stays idempotent.
		o.Registry.Unbind(conn)
		return LeaveResult{}, false
	}
	return res, true
}

// Teardown dissolves lobbyID explicitly and reports who was unbound.
func (o *Orchestrator) Teardown(lobbyID domain.LobbyID) []app.Member {
	lobby, ok := o.Lobbies.Get(lobbyID)
	if !ok {
		return nil
	}
	return o.teardown(lobby)
}

// teardown captures each member's signal before the unbind; the caller
// delivers the closing notice through those endpoints.
func (o *Orchestrator) teardown(lobby *core.LobbySession) []app.Member {
	members := o.membersOf(lobby.Conns())
	for _, m := range members {
		o.Registry.Unbind(m.Conn)
	}
	o.Lobbies.Remove(lobby.ID())
	return members
}

func (o *Orchestrator) membersOf(conns []domain.ConnID) []app.Member {
	out := make([]app.Member, 0, len(conns))
	for _, c := range conns {
		if b, ok := o.Registry.Get(c); ok {
			out = append(out, app.Member{Conn: c, Signal: b.Signal})
		}
	}
	return out
}
