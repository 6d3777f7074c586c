package signal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/auralab/internal/app"
	"github.com/auralab/auralab/internal/app/orch"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

func newController(limiter *JoinRateLimiter) *LobbyWSController {
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Lobbies:  core.NewLobbyManager(0),
	}
	return NewLobbyWSController(o, limiter, 0)
}

// attach registers a channel-only connection; the pumps never run, so
// replies pile up in the send buffer where the test reads them.
func attach(ctl *LobbyWSController, sid domain.ConnID) *WsLobbyConn {
	conn := &WsLobbyConn{send: make(chan core.Frame, 32)}
	ctl.track(sid, conn, func() {})
	return conn
}

func recv(t *testing.T, conn *WsLobbyConn) map[string]any {
	t.Helper()
	select {
	case frame := <-conn.send:
		var msg map[string]any
		require.NoError(t, json.Unmarshal(frame, &msg))
		return msg
	default:
		t.Fatal("no message in send buffer")
		return nil
	}
}

func TestCreateThenJoinFlow(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")
	mic := attach(ctl, "mic")

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb1"}`))
	msg := recv(t, host)
	assert.Equal(t, "lobby_created", msg["type"])

	ctl.handleMessage("mic", mic, []byte(`{"type":"join","lobby":"lb1","role":"microphone"}`))
	msg = recv(t, mic)
	assert.Equal(t, "joined", msg["type"])
	assert.Equal(t, "microphone", msg["role"])
	assert.Equal(t, float64(0), msg["index"])

	// The host hears about the new member.
	msg = recv(t, host)
	assert.Equal(t, "member_joined", msg["type"])
	assert.Equal(t, "mic", msg["sid"])
}

func TestJoinAbsentLobbyCreatesIt(t *testing.T) {
	ctl := newController(nil)
	conn := attach(ctl, "c1")

	ctl.handleMessage("c1", conn, []byte(`{"type":"join","lobby":"fresh","role":"speaker"}`))
	msg := recv(t, conn)
	assert.Equal(t, "lobby_created", msg["type"])

	lobby, ok := ctl.Orch.Lobbies.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("c1"), lobby.Host())
}

func TestJoinErrorsSurfaceAsMessages(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, host)

	// Joining a second lobby without leaving is an error reply, not a close.
	ctl.handleMessage("host", host, []byte(`{"type":"join","lobby":"other","role":"speaker"}`))
	msg := recv(t, host)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "already in a lobby", msg["error"])

	conn := attach(ctl, "c2")
	ctl.handleMessage("c2", conn, []byte(`{"type":"join","lobby":"lb","role":"drums"}`))
	msg = recv(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "unknown role", msg["error"])
}

func TestLeaveNotifiesSurvivors(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")
	mic := attach(ctl, "mic")

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, host)
	ctl.handleMessage("mic", mic, []byte(`{"type":"join","lobby":"lb","role":"microphone"}`))
	recv(t, mic)
	recv(t, host) // member_joined

	ctl.handleMessage("mic", mic, []byte(`{"type":"leave"}`))
	msg := recv(t, mic)
	assert.Equal(t, "left", msg["type"])

	msg = recv(t, host)
	assert.Equal(t, "member_left", msg["type"])
	assert.Equal(t, "mic", msg["sid"])
}

func TestHostDisconnectClosesLobby(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")
	mic := attach(ctl, "mic")
	spk := attach(ctl, "spk")

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, host)
	ctl.handleMessage("mic", mic, []byte(`{"type":"join","lobby":"lb","role":"microphone"}`))
	ctl.handleMessage("spk", spk, []byte(`{"type":"join","lobby":"lb","role":"speaker"}`))

	ctl.handleDisconnect("host")

	drain := func(conn *WsLobbyConn) []string {
		var types []string
		for {
			select {
			case frame := <-conn.send:
				var msg map[string]any
				require.NoError(t, json.Unmarshal(frame, &msg))
				types = append(types, msg["type"].(string))
			default:
				return types
			}
		}
	}
	assert.Contains(t, drain(mic), "lobby_closed")
	assert.Contains(t, drain(spk), "lobby_closed")

	_, ok := ctl.Orch.Lobbies.Get("lb")
	assert.False(t, ok)
}

func TestStateReply(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")

	ctl.handleMessage("host", host, []byte(`{"type":"state"}`))
	msg := recv(t, host)
	assert.Equal(t, "error", msg["type"])

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, host)
	ctl.handleMessage("host", host, []byte(`{"type":"state"}`))
	msg = recv(t, host)
	assert.Equal(t, "lobby_state", msg["type"])
}

func TestPing(t *testing.T) {
	ctl := newController(nil)
	conn := attach(ctl, "c")
	ctl.handleMessage("c", conn, []byte(`{"type":"ping"}`))
	msg := recv(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestJoinRateLimited(t *testing.T) {
	ctl := newController(NewJoinRateLimiter(1, time.Minute))
	conn := attach(ctl, "c")

	ctl.handleMessage("c", conn, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, conn)
	ctl.handleMessage("c", conn, []byte(`{"type":"leave"}`))
	recv(t, conn)

	ctl.handleMessage("c", conn, []byte(`{"type":"create","lobby":"lb2"}`))
	msg := recv(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "rate_limited", msg["error"])
}

func TestNotifyFlowsThroughBoundTransport(t *testing.T) {
	ctl := newController(nil)
	host := attach(ctl, "host")

	// mic's socket is never tracked by the controller; its binding is
	// the only place holding the transport.
	mic := &WsLobbyConn{send: make(chan core.Frame, 32)}

	ctl.handleMessage("host", host, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, host)
	ctl.handleMessage("mic", mic, []byte(`{"type":"join","lobby":"lb","role":"microphone"}`))
	recv(t, mic)
	recv(t, host) // member_joined

	ctl.handleDisconnect("host")

	msg := recv(t, mic)
	assert.Equal(t, "lobby_closed", msg["type"])
}

func TestRebindReplacesSocket(t *testing.T) {
	ctl := newController(nil)

	old := &WsLobbyConn{send: make(chan core.Frame, 32)}
	canceled := false
	ctl.track("c", old, func() { canceled = true })

	fresh := attach(ctl, "c")

	assert.True(t, canceled)
	assert.Error(t, old.TrySend(core.Frame("x")), "replaced socket should be closed")

	// The stale socket's cleanup must not evict the live one.
	assert.False(t, ctl.untrack("c", old))
	assert.True(t, ctl.untrack("c", fresh))
}

func TestRebindRepointsBoundTransport(t *testing.T) {
	ctl := newController(nil)
	old := attach(ctl, "host")

	ctl.handleMessage("host", old, []byte(`{"type":"create","lobby":"lb"}`))
	recv(t, old)

	fresh := attach(ctl, "host")

	mic := attach(ctl, "mic")
	ctl.handleMessage("mic", mic, []byte(`{"type":"join","lobby":"lb","role":"microphone"}`))
	recv(t, mic)

	msg := recv(t, fresh)
	assert.Equal(t, "member_joined", msg["type"])
}

func TestTrySendBackpressure(t *testing.T) {
	conn := &WsLobbyConn{send: make(chan core.Frame, 1)}
	require.NoError(t, conn.TrySend(core.Frame("a")))
	assert.ErrorIs(t, conn.TrySend(core.Frame("b")), ErrBackpressure)
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewJoinRateLimiter(2, 50*time.Millisecond)
	assert.True(t, rl.Allow("c"))
	assert.True(t, rl.Allow("c"))
	assert.False(t, rl.Allow("c"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("c"))
}
