package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/privchat/privchat-backend/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the HTTP layer.
		return true
	},
}

// messageRouter and presenceRegistry are the slices of the services layer
// a connection session touches. Narrow interfaces keep the session testable
// without a live store.
type messageRouter interface {
	HandleSend(ctx context.Context, originID string, data *services.SendEnvelope, ack services.AckFunc)
}

type presenceRegistry interface {
	Register(ctx context.Context, socketID, username string) error
	Unregister(ctx context.Context, socketID string) error
}

// ChatGateway upgrades HTTP requests to WebSocket connections and runs one
// connection session per socket.
type ChatGateway struct {
	hub      *services.Hub
	router   messageRouter
	presence presenceRegistry
}

func NewChatGateway(hub *services.Hub, router messageRouter, presence presenceRegistry) *ChatGateway {
	return &ChatGateway{hub: hub, router: router, presence: presence}
}

// ServeWS is the /ws endpoint. Each accepted connection gets a fresh opaque
// socket id; the id, not the connection object, is what flows through the
// presence registry and the router.
func (g *ChatGateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	socketID := uuid.NewString()
	wc := &wsConn{conn: conn}

	g.hub.Attach(socketID, wc)
	sess := newConnSession(socketID, g.router, g.presence, wc.WriteJSON)

	defer func() {
		g.hub.Detach(socketID)
		sess.handleDisconnect(context.Background())
		conn.Close()
	}()

	conn.SetReadLimit(64 * 1024)

	// All three event handlers (send, identify, disconnect) are armed by the
	// session before the first frame can be read.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Covers both clean close and abrupt drop; cleanup runs in the
			// deferred block either way.
			return
		}
		sess.handleFrame(r.Context(), data)
	}
}

// wsConn serializes writes to the underlying connection. Acks come from the
// read loop while delivery pushes come from the hub's fan-out, so WriteJSON
// must be safe for concurrent use.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// clientFrame is the envelope for every inbound WebSocket frame. Data stays
// raw until the event type picks a payload shape; an id requests an ack.
type clientFrame struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ackFrame struct {
	Event string `json:"event"`
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

type identifyData struct {
	Username string `json:"username"`
}

// connSession is the per-connection lifecycle controller: it dispatches
// identify and send events to the services layer and tears presence down on
// disconnect.
type connSession struct {
	socketID string
	router   messageRouter
	presence presenceRegistry
	send     func(v interface{}) error
}

func newConnSession(socketID string, router messageRouter, presence presenceRegistry, send func(v interface{}) error) *connSession {
	return &connSession{socketID: socketID, router: router, presence: presence, send: send}
}

// handleFrame decodes one inbound frame and dispatches it. Unknown events
// are ignored; malformed envelopes are logged and dropped.
func (s *connSession) handleFrame(ctx context.Context, raw []byte) {
	var frame clientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		log.Printf("socket %s sent malformed frame: %v", s.socketID, err)
		return
	}

	var ack services.AckFunc
	if frame.ID != "" {
		id := frame.ID
		ack = func(err error) {
			out := ackFrame{Event: services.EventAck, ID: id}
			if err != nil {
				out.Error = err.Error()
			}
			if werr := s.send(out); werr != nil {
				log.Printf("socket %s ack write failed: %v", s.socketID, werr)
			}
		}
	}

	switch frame.Event {
	case services.EventSendPrivateMessage:
		s.handleSend(ctx, frame.Data, ack)
	case services.EventSetUserSocket:
		s.handleIdentify(ctx, frame.Data, ack)
	default:
		// Unknown events are not an error at the transport layer.
	}
}

func (s *connSession) handleSend(ctx context.Context, data json.RawMessage, ack services.AckFunc) {
	var envelope *services.SendEnvelope
	if !isNullPayload(data) {
		envelope = &services.SendEnvelope{}
		if err := json.Unmarshal(data, envelope); err != nil {
			envelope = nil
		}
	}

	s.router.HandleSend(ctx, s.socketID, envelope, ack)
}

// handleIdentify binds the socket id to a username in the presence
// registry. A null payload fails without touching the registry; the
// registry itself makes repeated identifies for the same socket a no-op.
func (s *connSession) handleIdentify(ctx context.Context, data json.RawMessage, ack services.AckFunc) {
	if isNullPayload(data) {
		acknowledge(ack, services.ErrMissingData)
		return
	}

	var d identifyData
	if err := json.Unmarshal(data, &d); err != nil {
		acknowledge(ack, services.ErrMissingData)
		return
	}

	acknowledge(ack, s.presence.Register(ctx, s.socketID, d.Username))
}

// handleDisconnect unconditionally clears the socket's presence row. There
// is no caller left to report to, so registry errors are logged and
// swallowed rather than surfaced to the transport layer.
func (s *connSession) handleDisconnect(ctx context.Context) {
	if err := s.presence.Unregister(ctx, s.socketID); err != nil {
		log.Printf("failed to unregister socket %s on disconnect: %v", s.socketID, err)
	}
}

func acknowledge(ack services.AckFunc, err error) {
	if ack != nil {
		ack(err)
	}
}

func isNullPayload(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
