// Package wsref is a reference websocket transport for internal/collab's
// message contract. Production wiring of the transport is out of scope
// (spec.md §1, §6.4); this package exists so tests can prove the wire
// contract round-trips over a real socket, mirroring the teacher's
// internal/net/ws package shape (Handler wrapping a gorilla/websocket
// Upgrader) without owning any connection lifecycle beyond the test.
package wsref

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wiretuner/engine/internal/collab"
)

// HandlerConfig configures a Handler, mirroring the teacher's
// ws.HandlerConfig shape.
type HandlerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	// CheckOrigin mirrors the upgrader field of the same name; nil means
	// accept every origin, matching the teacher's test/reference handler.
	CheckOrigin func(r *http.Request) bool
}

// Handler upgrades incoming HTTP requests to websockets and hands each
// connection's decoded collab.Envelope frames to OnMessage.
type Handler struct {
	upgrader  websocket.Upgrader
	OnMessage func(conn *Conn, env collab.Envelope)
	OnClose   func(conn *Conn)
}

// NewHandler constructs a Handler, defaulting buffer sizes the way the
// teacher's ws.NewHandler does.
func NewHandler(cfg HandlerConfig) *Handler {
	readSize := cfg.ReadBufferSize
	if readSize == 0 {
		readSize = 1024
	}
	writeSize := cfg.WriteBufferSize
	if writeSize == 0 {
		writeSize = 1024
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readSize,
			WriteBufferSize: writeSize,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Conn wraps a single upgraded websocket connection with collab.Envelope
// framing.
type Conn struct {
	ws *websocket.Conn
}

// Send writes env as a single text frame.
func (c *Conn) Send(env collab.Envelope) error {
	data, err := collab.Marshal(env)
	if err != nil {
		return fmt.Errorf("wsref: marshal: %w", err)
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.ws.Close() }

// send writes a raw text frame, bypassing collab.Envelope validation.
// Exported only to this package's tests, which need to exercise the
// malformed-frame path from the client side.
func (c *Conn) send(raw string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(raw))
}

// ServeHTTP upgrades the request and loops reading frames until the socket
// closes or ReadMessage errors, dispatching each decoded envelope to
// OnMessage.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &Conn{ws: wsConn}
	defer func() {
		conn.Close()
		if h.OnClose != nil {
			h.OnClose(conn)
		}
	}()

	for {
		_, payload, err := wsConn.ReadMessage()
		if err != nil {
			return
		}
		env, err := collab.Unmarshal(payload)
		if err != nil {
			_ = conn.Send(collab.Envelope{Type: collab.TypeError, Error: &collab.Error{
				Code: "malformed_message", Message: err.Error(),
			}})
			continue
		}
		if h.OnMessage != nil {
			h.OnMessage(conn, env)
		}
	}
}

// DialClient connects to a wsref.Handler at url, a thin wrapper over
// gorilla/websocket.Dial used by tests acting as the client side of the
// round-trip.
func DialClient(url string, handshakeTimeout time.Duration) (*Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	wsConn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsref: dial: %w", err)
	}
	return &Conn{ws: wsConn}, nil
}

// Receive blocks for the next frame and decodes it as a collab.Envelope.
func (c *Conn) Receive() (collab.Envelope, error) {
	_, payload, err := c.ws.ReadMessage()
	if err != nil {
		return collab.Envelope{}, fmt.Errorf("wsref: read: %w", err)
	}
	return collab.Unmarshal(payload)
}
