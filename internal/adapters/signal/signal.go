// Package signal is the WebSocket side of the lobby subsystem: it owns
// the sockets, pumps frames, and translates envelope messages into
// orchestrator calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/app/orch"
	"github.com/auralab/auralab/internal/core"
	"github.com/auralab/auralab/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type LobbyWSController struct {
	Orch *orch.Orchestrator

	limiter   *JoinRateLimiter
	readLimit int64

	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

// connEntry tracks socket lifecycle only; message delivery resolves
// transports through the binding registry.
type connEntry struct {
	conn   *WsLobbyConn
	cancel context.CancelFunc
}

func NewLobbyWSController(o *orch.Orchestrator, limiter *JoinRateLimiter, readLimit int64) *LobbyWSController {
	return &LobbyWSController{
		Orch:      o,
		limiter:   limiter,
		readLimit: readLimit,
		conns:     make(map[domain.ConnID]*connEntry),
	}
}

// WsLobbyConn wraps one socket with a buffered outbound channel.
type WsLobbyConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsLobbyConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsLobbyConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleLobby upgrades the request and runs the pumps until the socket
// dies. The connection id is the client token cookie set by the router.
func (ctl *LobbyWSController) HandleLobby(ctx context.Context, c *gin.Context) {
	sid := domain.ConnID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsLobbyConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.track(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

// track registers the socket for sid. A client reconnecting under the
// same id replaces its previous socket: the old pumps are canceled, the
// old socket closed, and an existing lobby binding repointed at the new
// transport.
func (ctl *LobbyWSController) track(sid domain.ConnID, conn *WsLobbyConn, cancel context.CancelFunc) {
	ctl.mu.Lock()
	prev := ctl.conns[sid]
	ctl.conns[sid] = &connEntry{conn: conn, cancel: cancel}
	ctl.mu.Unlock()

	if prev != nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rebind, replacing previous socket")
		prev.cancel()
		prev.conn.Close()
	}
	ctl.Orch.Registry.UpdateSignal(sid, conn)
}

// untrack removes sid's entry only when conn is still the current socket,
// so a replaced socket's late cleanup cannot evict its successor.
func (ctl *LobbyWSController) untrack(sid domain.ConnID, conn *WsLobbyConn) bool {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	entry, ok := ctl.conns[sid]
	if !ok || entry.conn != conn {
		return false
	}
	delete(ctl.conns, sid)
	return true
}
