// Package orch ties the binding registry and the lobby table together
// into the join/leave/disconnect flows.
package orch

import (
	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

type Orchestrator struct {
	Registry *app.Registry
	Lobbies  *core.LobbyManager
}

// JoinResult reports what CreateOrJoin did for the connection.
type JoinResult struct {
	State  core.LobbyState
	IsHost bool
	Role   domain.SlotRole
	Index  int
}

// LeaveResult carries what the transport layer must tell the survivors.
// Survivors keep their binding-held signal endpoints so a dissolved
// lobby's members can still be notified after their bindings are gone.
type LeaveResult struct {
	Lobby     domain.LobbyID
	WasHost   bool
	Closed    bool
	Survivors []app.Member
}
