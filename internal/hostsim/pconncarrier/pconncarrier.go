// Package pconncarrier is an event-style carrier backed by a real
// net.PacketConn, obtained the way the x/net conformance suite spins up
// disposable local listeners for its own tests
// (golang.org/x/net/nettest.NewLocalPacketListener), rather than an
// in-memory shortcut. It wraps writes in an injectable delay/drop hook,
// standing in for a real carrier's latency and loss characteristics in
// local integration tests that want a genuine socket in the path.
package pconncarrier

import (
	"net"
	"sync"
	"time"

	"golang.org/x/net/nettest"

	"github.com/netrelay/rudp/internal/baseenc"
	"github.com/netrelay/rudp/internal/model"
)

// Fault decides, for one outbound datagram, whether to drop it and how
// long to delay it before writing. It is polled once per BroadcastToPeer
// call.
type Fault func() (drop bool, delay time.Duration)

// NoFault never drops or delays.
func NoFault() (bool, time.Duration) { return false, 0 }

// Carrier is an event-style carrier over one net.PacketConn, addressed to a
// single fixed peer address (the two ends of a local pair returned by
// [NewLocalPair]).
type Carrier struct {
	conn     net.PacketConn
	peerAddr net.Addr
	peerName string
	logger   model.Logger
	fault    Fault

	mu      sync.Mutex
	handler func(peer, text string)

	closeOnce sync.Once
	done      chan struct{}
}

// NewLocalPair returns two Carriers wired to each other over two local UDP
// sockets obtained via nettest.NewLocalPacketListener, the way the x/net
// test suite avoids hardcoding ports. aName/bName are the peer names each
// side reports to the other's handler.
func NewLocalPair(aName, bName string, logger model.Logger) (a, b *Carrier, err error) {
	connA, err := nettest.NewLocalPacketListener("udp")
	if err != nil {
		return nil, nil, err
	}
	connB, err := nettest.NewLocalPacketListener("udp")
	if err != nil {
		connA.Close()
		return nil, nil, err
	}

	a = newCarrier(connA, connB.LocalAddr(), bName, logger)
	b = newCarrier(connB, connA.LocalAddr(), aName, logger)
	go a.readLoop()
	go b.readLoop()
	return a, b, nil
}

func newCarrier(conn net.PacketConn, peerAddr net.Addr, peerName string, logger model.Logger) *Carrier {
	return &Carrier{
		conn:     conn,
		peerAddr: peerAddr,
		peerName: peerName,
		logger:   logger,
		fault:    NoFault,
		done:     make(chan struct{}),
	}
}

// SetFault installs a fault function applied to every subsequent
// BroadcastToPeer call.
func (c *Carrier) SetFault(f Fault) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fault = f
}

// OnEvent registers the handler invoked for every datagram the read loop
// decodes.
func (c *Carrier) OnEvent(handler func(peer, text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// BroadcastToPeer base-N encodes payload and writes it as one UDP datagram
// to the peer address this Carrier was paired with. peer is accepted for
// interface symmetry but ignored, since a Carrier is already bound to one
// peer address.
func (c *Carrier) BroadcastToPeer(peer string, payload []byte) error {
	c.mu.Lock()
	fault := c.fault
	c.mu.Unlock()

	drop, delay := fault()
	if drop {
		return nil
	}
	text := baseenc.Encode(payload)
	if delay > 0 {
		time.AfterFunc(delay, func() { c.conn.WriteTo([]byte(text), c.peerAddr) })
		return nil
	}
	_, err := c.conn.WriteTo([]byte(text), c.peerAddr)
	return err
}

func (c *Carrier) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-c.done:
			default:
				if c.logger != nil {
					c.logger.Debugf("pconncarrier: read loop ending: %v", err)
				}
			}
			return
		}
		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(c.peerName, string(buf[:n]))
		}
	}
}

// Close closes the underlying socket.
func (c *Carrier) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}
