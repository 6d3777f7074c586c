package domain

type (
	LobbyID string
	ConnID  string
)

// SlotRole selects which slot list of a lobby a connection occupies.
type SlotRole string

const (
	RoleMicrophone SlotRole = "microphone"
	RoleSpeaker    SlotRole = "speaker"
)

func (r SlotRole) Valid() bool {
	return r == RoleMicrophone || r == RoleSpeaker
}

// LobbySlot is one occupied position in a lobby role list.
// Index is unique per role within a lobby.
type LobbySlot struct {
	Conn  ConnID `json:"sid"`
	Index int    `json:"index"`
}
