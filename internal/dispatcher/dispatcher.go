// Package dispatcher implements the multi-endpoint façade that owns, per
// peer, the S/M/B reliable endpoints and the shared U unreliable endpoint,
// routes outbound application events by payload size, wires inbound
// carrier callbacks to the right endpoint, and implements the handshake
// and piggyback protocols tying the per-peer endpoints together.
package dispatcher

import (
	"bytes"
	"sync"

	"github.com/netrelay/rudp/internal/carrierpool"
	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/reliable"
	"github.com/netrelay/rudp/internal/unreliable"
)

// Listener receives messages delivered from a peer, in the order the
// originating endpoint delivered them.
type Listener func(peer string, msg model.Message)

// Dispatcher is the multi-endpoint façade. The zero value is invalid; use
// [New].
type Dispatcher struct {
	mu    sync.Mutex
	cfg   *Config
	pool  *carrierpool.Pool
	peers map[string]*peer

	transport Transport

	// outboundU is this side's own unreliable broadcast sender. It is
	// shared across peers: there is one outgoing queue, fanned out via
	// Transport.TransmitU. Each peer keeps its own unreliable endpoint
	// for tracking loss on the receive side, since every peer broadcasts
	// its own independently-numbered stream.
	outboundU *unreliable.Endpoint

	trampoline *trampoline

	globalListeners []Listener
	peerListeners   map[string][]Listener
}

// New returns a Dispatcher wired to the given transport. poolSize is the
// number of carrier slots available; each peer leases three (S, M, B) for
// the lifetime of the connection.
func New(cfg *Config, transport Transport, poolSize int) *Dispatcher {
	if cfg == nil {
		cfg = NewConfig()
	}
	d := &Dispatcher{
		cfg:           cfg,
		pool:          carrierpool.New(poolSize),
		peers:         make(map[string]*peer),
		transport:     transport,
		outboundU:     unreliable.NewEndpoint(cfg.uConfig, nil),
		trampoline:    &trampoline{},
		peerListeners: make(map[string][]Listener),
	}
	d.outboundU.SetTransmitCallback(func(h uint32, payload []byte) {
		if err := d.transport.TransmitU(h, payload); err != nil {
			cfg.logger.Warnf("dispatcher: U carrier rejected frame of %d bytes: %v", len(payload), err)
		}
	})
	return d
}

// Connect subscribes listener to every message delivered from any peer.
func (d *Dispatcher) Connect(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.globalListeners = append(d.globalListeners, listener)
}

// ConnectForPeer subscribes listener to messages delivered from peerID
// only. Intended for the server side, which tracks individual peers.
func (d *Dispatcher) ConnectForPeer(peerID string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peerListeners[peerID] = append(d.peerListeners[peerID], listener)
}

// AttachPeer creates the endpoint set for a newly acknowledged peer,
// leasing its carrier slots. Endpoints start in the Created state; they
// reach Transmitting once the handshake literal arrives or UnlockPeer is
// called.
func (d *Dispatcher) AttachPeer(peerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.peers[peerID]; exists {
		return nil
	}
	p, err := d.newPeer(peerID)
	if err != nil {
		return err
	}
	d.peers[peerID] = p
	return nil
}

// DetachPeer destroys peerID's endpoints and releases its carrier leases.
func (d *Dispatcher) DetachPeer(peerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.peers[peerID]
	if !ok {
		return
	}
	p.destroy()
	delete(d.peers, peerID)
	delete(d.peerListeners, peerID)
}

// UnlockPeer clears the handshake lock for peerID without waiting for the
// handshake literal, e.g. for a transport that already authenticates
// peers out of band.
func (d *Dispatcher) UnlockPeer(peerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.peers[peerID]; ok {
		p.unlock()
	}
}

// SetPeerBlocked toggles peerID's blocking-modal state, which excludes S
// from outbound routing consideration while true.
func (d *Dispatcher) SetPeerBlocked(peerID string, blocked bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.peers[peerID]; ok {
		p.blocked = blocked
	}
}

// BroadcastToPeer submits msg for reliable unicast delivery to peerID,
// choosing S, M or B by measured size. Sending the handshake literal is
// itself the local decision to start transmitting: it unlocks peerID's
// endpoints first, so the literal can actually reach the wire instead of
// sitting queued behind a lock only the literal's own arrival would clear.
func (d *Dispatcher) BroadcastToPeer(peerID string, msg model.Message) error {
	if msg == nil {
		return model.ErrNilArgument
	}
	d.mu.Lock()
	p, ok := d.peers[peerID]
	if ok && bytes.Equal(msg, model.ReadyLiteral) {
		p.unlock()
	}
	d.mu.Unlock()
	if !ok {
		return model.ErrPeerNotConnected
	}
	ep := d.selectEndpoint(p, msg)
	_, err := ep.Send(msg)
	return err
}

// BroadcastToAll submits msg for reliable delivery to every attached peer.
func (d *Dispatcher) BroadcastToAll(msg model.Message) error {
	if msg == nil {
		return model.ErrNilArgument
	}
	d.mu.Lock()
	peers := make([]*peer, 0, len(d.peers))
	for _, p := range d.peers {
		peers = append(peers, p)
	}
	d.mu.Unlock()

	var firstErr error
	for _, p := range peers {
		ep := d.selectEndpoint(p, msg)
		if _, err := ep.Send(msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BroadcastToServer submits msg for reliable client-to-server delivery.
// serverPeerID names the server's peer handle from this dispatcher's
// point of view.
func (d *Dispatcher) BroadcastToServer(serverPeerID string, msg model.Message) error {
	return d.BroadcastToPeer(serverPeerID, msg)
}

// UnreliableBroadcastToAll submits msg on the shared U endpoint. U is
// shared across peers: there is one send queue and it fans out via
// [Transport.TransmitU].
func (d *Dispatcher) UnreliableBroadcastToAll(msg model.Message) error {
	if msg == nil {
		return model.ErrNilArgument
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.outboundU.Send(msg)
	return err
}

// selectEndpoint implements §4.6's outbound routing rule: S if it fits
// and the peer isn't blocked and S isn't backed up, else M, else B.
func (d *Dispatcher) selectEndpoint(p *peer, msg model.Message) *reliable.Endpoint {
	size := msg.Size()
	if !p.blocked && size <= p.s.MaxMessageSize() && p.s.QueueDepth() < d.cfg.sQueueDepthThreshold {
		return p.s
	}
	if size <= p.m.MaxMessageSize() {
		return p.m
	}
	return p.b
}
