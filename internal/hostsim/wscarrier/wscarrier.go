// Package wscarrier is a network-backed event-style carrier for
// integration tests that actually cross a loopback socket, proving the
// base-N text escaping round-trips over a genuinely text-only pipe
// (gorilla/websocket's TextMessage frames) rather than an in-memory
// shortcut.
package wscarrier

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/netrelay/rudp/internal/baseenc"
	"github.com/netrelay/rudp/internal/model"
)

// Carrier speaks one event per connection: every BroadcastToPeer call sends
// one TextMessage frame carrying the base-N encoded payload, and every
// received TextMessage frame is handed to the registered handler. Peer
// addressing is implicit in which connection a call is made on; a Carrier
// wraps exactly one connection.
type Carrier struct {
	conn    *websocket.Conn
	peer    string
	logger  model.Logger
	mu      sync.Mutex
	handler func(peer, text string)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Serve upgrades an incoming HTTP request to a websocket connection and
// returns a Carrier wrapping it, addressed as peer. Intended for use
// directly as an http.HandlerFunc's body.
func Serve(w http.ResponseWriter, r *http.Request, peer string, logger model.Logger) (*Carrier, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newCarrier(conn, peer, logger), nil
}

// Dial dials url and returns a Carrier wrapping the resulting connection,
// addressed as peer.
func Dial(url string, peer string, logger model.Logger) (*Carrier, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newCarrier(conn, peer, logger), nil
}

func newCarrier(conn *websocket.Conn, peer string, logger model.Logger) *Carrier {
	return &Carrier{conn: conn, peer: peer, logger: logger}
}

// OnEvent registers the handler invoked for every frame ReadLoop decodes.
// A Carrier only ever calls it with its own peer name.
func (c *Carrier) OnEvent(handler func(peer, text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// BroadcastToPeer base-N encodes payload and writes it as one TextMessage
// frame. peer is accepted for interface symmetry with the in-memory
// carriers but ignored: a Carrier already wraps exactly one connection.
func (c *Carrier) BroadcastToPeer(peer string, payload []byte) error {
	text := baseenc.Encode(payload)
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// ReadLoop blocks reading TextMessage frames off the connection and
// dispatching them to the registered handler, until the connection closes
// or a read error occurs. Run it in its own goroutine.
func (c *Carrier) ReadLoop() {
	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if c.logger != nil {
				c.logger.Debugf("wscarrier: read loop for %s ending: %v", c.peer, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(c.peer, string(msg))
		}
	}
}

// Close closes the underlying connection.
func (c *Carrier) Close() error {
	return c.conn.Close()
}
