package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/app/orch"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

// handleCreate puts sid into a lobby as host. Losing a creation race is
// not an error: the loser is redirected into a join.
func (ctl *LobbyWSController) handleCreate(sid domain.ConnID, conn *WsLobbyConn, data []byte) {
	type createPayload struct {
		Type  string `json:"type"`
		Lobby string `json:"lobby"`
		Role  string `json:"role,omitempty"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Lobby == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad create payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	role := domain.SlotRole(p.Role)
	if p.Role == "" {
		role = domain.RoleMicrophone
	}
	ctl.enter(sid, conn, domain.LobbyID(p.Lobby), role)
}

func (ctl *LobbyWSController) handleJoin(sid domain.ConnID, conn *WsLobbyConn, data []byte) {
	type joinPayload struct {
		Type  string `json:"type"`
		Lobby string `json:"lobby"`
		Role  string `json:"role"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Lobby == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.enter(sid, conn, domain.LobbyID(p.Lobby), domain.SlotRole(p.Role))
}

func (ctl *LobbyWSController) enter(sid domain.ConnID, conn *WsLobbyConn, lobby domain.LobbyID, role domain.SlotRole) {
	if ctl.limiter != nil && !ctl.limiter.Allow(sid) {
		ctl.sendError(conn, "rate_limited")
		return
	}

	res, err := ctl.Orch.CreateOrJoin(sid, lobby, role, conn)
	if err != nil {
		ctl.sendError(conn, joinErrorText(err))
		return
	}

	if res.IsHost {
		ctl.sendJSON(conn, struct {
			Type  string          `json:"type"`
			State core.LobbyState `json:"state"`
		}{"lobby_created", res.State})
		return
	}

	ctl.sendJSON(conn, struct {
		Type  string          `json:"type"`
		Role  domain.SlotRole `json:"role"`
		Index int             `json:"index"`
		State core.LobbyState `json:"state"`
	}{"joined", res.Role, res.Index, res.State})

	ctl.broadcast(res.State.ID, struct {
		Type  string          `json:"type"`
		Sid   domain.ConnID   `json:"sid"`
		Role  domain.SlotRole `json:"role"`
		Index int             `json:"index"`
	}{"member_joined", sid, res.Role, res.Index}, sid)
}

// handleLeave exits the current lobby; the socket stays open.
func (ctl *LobbyWSController) handleLeave(sid domain.ConnID, conn *WsLobbyConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	res, err := ctl.Orch.Leave(sid)
	if err != nil {
		ctl.sendError(conn, "not in a lobby")
		return
	}
	ctl.sendJSON(conn, map[string]any{"type": "left"})
	ctl.notifySurvivors(sid, res)
}

func (ctl *LobbyWSController) handleState(sid domain.ConnID, conn *WsLobbyConn) {
	b, ok := ctl.Orch.Registry.Get(sid)
	if !ok {
		ctl.sendError(conn, "not in a lobby")
		return
	}
	lobby, ok := ctl.Orch.Lobbies.Get(b.Lobby)
	if !ok {
		ctl.sendError(conn, "lobby is gone")
		return
	}
	ctl.sendJSON(conn, struct {
		Type  string          `json:"type"`
		State core.LobbyState `json:"state"`
	}{"lobby_state", lobby.Snapshot()})
}

// handleDisconnect is the transport-close hook: resolve the binding and
// leave before it is discarded so no slot entry outlives the socket.
func (ctl *LobbyWSController) handleDisconnect(sid domain.ConnID) {
	res, ok := ctl.Orch.Disconnect(sid)
	if !ok {
		return
	}
	ctl.notifySurvivors(sid, res)
}

// notifySurvivors delivers the departure to the members the orchestrator
// reported. Their captured signal endpoints stay valid even when the
// lobby dissolved and the bindings are already gone.
func (ctl *LobbyWSController) notifySurvivors(sid domain.ConnID, res orch.LeaveResult) {
	if res.Closed {
		ctl.sendToMembers(res.Survivors, map[string]any{
			"type":  "lobby_closed",
			"lobby": res.Lobby,
		})
		return
	}
	ctl.sendToMembers(res.Survivors, struct {
		Type string        `json:"type"`
		Sid  domain.ConnID `json:"sid"`
	}{"member_left", sid})
}

// broadcast fans v out to every member of lobby except excluding, each
// through the transport its binding holds.
func (ctl *LobbyWSController) broadcast(lobby domain.LobbyID, v any, excluding domain.ConnID) {
	sess, ok := ctl.Orch.Lobbies.Get(lobby)
	if !ok {
		return
	}
	for _, member := range sess.Conns() {
		if member == excluding {
			continue
		}
		b, ok := ctl.Orch.Registry.Get(member)
		if !ok || b.Signal == nil {
			continue
		}
		ctl.sendJSON(b.Signal, v)
	}
}

func (ctl *LobbyWSController) sendToMembers(members []app.Member, v any) {
	for _, m := range members {
		if m.Signal == nil {
			continue
		}
		ctl.sendJSON(m.Signal, v)
	}
}

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, app.ErrAlreadyBound):
		return "already in a lobby"
	case errors.Is(err, core.ErrAlreadyJoined):
		return "already in a lobby"
	case errors.Is(err, core.ErrSlotUnavailable):
		return "no free slot"
	case errors.Is(err, core.ErrUnknownRole):
		return "unknown role"
	default:
		return "join failed"
	}
}
