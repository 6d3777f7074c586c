package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/domain"
)

// LobbyState is a read-only view for APIs and signal replies.
type LobbyState struct {
	ID          domain.LobbyID     `json:"lobby"`
	Host        domain.ConnID      `json:"host"`
	Microphones []domain.LobbySlot `json:"microphones"`
	Speakers    []domain.LobbySlot `json:"speakers"`
}

// LobbySession is one lobby's live state. All mutations run under the
// lobby mutex; two operations on the same lobby never interleave.
// It never touches transport resources.
type LobbySession struct {
	mu          sync.Mutex
	id          domain.LobbyID
	host        domain.ConnID
	microphones []domain.LobbySlot
	speakers    []domain.LobbySlot
	maxSlots    int // per role; 0 means unlimited
}

func NewLobbySession(id domain.LobbyID, host domain.ConnID, maxSlots int) *LobbySession {
	return &LobbySession{id: id, host: host, maxSlots: maxSlots}
}

func (l *LobbySession) ID() domain.LobbyID { return l.id }

func (l *LobbySession) Host() domain.ConnID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.host
}

// Join assigns conn the lowest unused index for role and returns it.
// A connection occupies at most one slot across host, microphones and
// speakers; joining twice fails with ErrAlreadyJoined.
func (l *LobbySession) Join(conn domain.ConnID, role domain.SlotRole) (int, error) {
	if !role.Valid() {
		return 0, ErrUnknownRole
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holdsLocked(conn) {
		return 0, ErrAlreadyJoined
	}
	slots := &l.microphones
	if role == domain.RoleSpeaker {
		slots = &l.speakers
	}
	if l.maxSlots > 0 && len(*slots) >= l.maxSlots {
		return 0, ErrSlotUnavailable
	}
	idx := lowestFreeIndex(*slots)
	*slots = append(*slots, domain.LobbySlot{Conn: conn, Index: idx})
	log.Info().Str("module", "core.lobby").Str("lobby", string(l.id)).Str("sid", string(conn)).Str("role", string(role)).Int("index", idx).Msg("slot assigned")
	return idx, nil
}

// Leave removes conn from whichever slot list holds it, or clears the
// host seat. wasHost reports a departing host; empty reports that no
// host and no slots remain.
func (l *LobbySession) Leave(conn domain.ConnID) (wasHost, empty, found bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.host == conn {
		l.host = ""
		wasHost, found = true, true
	} else if removeSlot(&l.microphones, conn) || removeSlot(&l.speakers, conn) {
		found = true
	}
	empty = l.host == "" && len(l.microphones) == 0 && len(l.speakers) == 0
	if found {
		log.Info().Str("module", "core.lobby").Str("lobby", string(l.id)).Str("sid", string(conn)).Bool("was_host", wasHost).Msg("slot released")
	}
	return wasHost, empty, found
}

// Conns lists every bound connection, host first.
func (l *LobbySession) Conns() []domain.ConnID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.ConnID, 0, 1+len(l.microphones)+len(l.speakers))
	if l.host != "" {
		out = append(out, l.host)
	}
	for _, s := range l.microphones {
		out = append(out, s.Conn)
	}
	for _, s := range l.speakers {
		out = append(out, s.Conn)
	}
	return out
}

func (l *LobbySession) HasConn(conn domain.ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdsLocked(conn)
}

func (l *LobbySession) MemberCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.microphones) + len(l.speakers)
	if l.host != "" {
		n++
	}
	return n
}

func (l *LobbySession) Snapshot() LobbyState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := LobbyState{
		ID:          l.id,
		Host:        l.host,
		Microphones: make([]domain.LobbySlot, len(l.microphones)),
		Speakers:    make([]domain.LobbySlot, len(l.speakers)),
	}
	copy(st.Microphones, l.microphones)
	copy(st.Speakers, l.speakers)
	return st
}

func (l *LobbySession) holdsLocked(conn domain.ConnID) bool {
	if l.host == conn {
		return true
	}
	for _, s := range l.microphones {
		if s.Conn == conn {
			return true
		}
	}
	for _, s := range l.speakers {
		if s.Conn == conn {
			return true
		}
	}
	return false
}

// lowestFreeIndex returns the smallest non-negative index not present in
// slots. Indices freed by Leave are reused by the next joiner.
func lowestFreeIndex(slots []domain.LobbySlot) int {
	used := make(map[int]struct{}, len(slots))
	for _, s := range slots {
		used[s.Index] = struct{}{}
	}
	for i := 0; ; i++ {
		if _, ok := used[i]; !ok {
			return i
		}
	}
}

func removeSlot(slots *[]domain.LobbySlot, conn domain.ConnID) bool {
	for i, s := range *slots {
		if s.Conn == conn {
			*slots = append((*slots)[:i], (*slots)[i+1:]...)
			return true
		}
	}
	return false
}
