package rpc

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn carries JSON messages between peers. The websocket implementation
// comes from Dial and Handler; tests use an in-memory pair.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// wsConn wraps gorilla/websocket.Conn to implement Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadJSON(v any) error  { return c.conn.ReadJSON(v) }
func (c *wsConn) WriteJSON(v any) error { return c.conn.WriteJSON(v) }
func (c *wsConn) Close() error          { return c.conn.Close() }

// Dial opens a websocket connection to a peer, e.g. "ws://localhost:7117/rpc".
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "rpc: dial %s", url)
	}
	return &wsConn{conn: conn}, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 << 10,
	WriteBufferSize: 64 << 10,
}

// Handler upgrades each request to a websocket and runs serve on it. The
// connection is closed when serve returns.
func Handler(serve func(ctx context.Context, conn Conn) error, logger *zap.SugaredLogger) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorw("RPC websocket upgrade failed", "error", err)
			return
		}
		conn := &wsConn{conn: ws}
		defer conn.Close()

		if err := serve(r.Context(), conn); err != nil {
			logger.Warnw("RPC session failed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}
		logger.Infow("RPC session complete", "remote_addr", r.RemoteAddr)
	})
}
