// Buzzstream - Real-time Event Stream Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/buzzstream

package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/buzzstream/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // clients only send control frames
)

// NewUpgrader returns a WebSocket upgrader that accepts the given origins.
// "*" accepts any origin. Requests without an Origin header are accepted
// only when "*" is configured.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[origin] {
				return true
			}
			logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
			return false
		},
	}
}

// WebSocket is a stream transport over a gorilla/websocket connection.
type WebSocket struct {
	conn       *websocket.Conn
	pingPeriod time.Duration
	pongWait   time.Duration

	// mu serializes writers; gorilla allows one concurrent writer.
	mu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
}

// WebSocketOption configures a WebSocket.
type WebSocketOption func(*WebSocket)

// WithPingPeriod overrides the keepalive ping interval and the matching
// pong deadline.
func WithPingPeriod(period time.Duration) WebSocketOption {
	return func(ws *WebSocket) {
		ws.pingPeriod = period
		ws.pongWait = period * 10 / 9
	}
}

// NewWebSocket wraps conn and starts its read pump and ping loop.
func NewWebSocket(conn *websocket.Conn, opts ...WebSocketOption) *WebSocket {
	ws := &WebSocket{
		conn:       conn,
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ws)
	}

	go ws.readPump()
	go ws.pingLoop()
	return ws
}

// readPump discards client messages and closes the transport when the
// peer goes away or stops answering pings.
func (ws *WebSocket) readPump() {
	defer ws.Close() //nolint:errcheck // best-effort cleanup

	ws.conn.SetReadLimit(maxMessageSize)
	if err := ws.conn.SetReadDeadline(time.Now().Add(ws.pongWait)); err != nil {
		return
	}
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(ws.pongWait))
	})

	for {
		if _, _, err := ws.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Msg("unexpected websocket close")
			}
			return
		}
	}
}

func (ws *WebSocket) pingLoop() {
	ticker := time.NewTicker(ws.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ws.done:
			return
		case <-ticker.C:
			ws.mu.Lock()
			err := ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			ws.mu.Unlock()
			if err != nil {
				_ = ws.Close()
				return
			}
		}
	}
}

// Hello sends the initial {"type":"connected","client_id":...} message.
func (ws *WebSocket) Hello(ctx context.Context, clientID string) error {
	frame, err := ConnectedFrame(clientID)
	if err != nil {
		return err
	}
	return ws.Write(ctx, frame)
}

// Write sends frame as one text message.
func (ws *WebSocket) Write(ctx context.Context, frame []byte) error {
	select {
	case <-ws.done:
		return ErrClosed
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	if err := ws.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := ws.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

// Close sends a close frame and closes the connection. Safe to call more than once.
func (ws *WebSocket) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.done)

		ws.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		ws.mu.Unlock()

		err = ws.conn.Close()
	})
	return err
}

// Done is closed when the connection ends.
func (ws *WebSocket) Done() <-chan struct{} {
	return ws.done
}

// Kind returns "websocket".
func (ws *WebSocket) Kind() string {
	return KindWebSocket
}
