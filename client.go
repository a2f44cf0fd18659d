// Package rudp is the public façade over the ordered, multi-endpoint
// message transport: applications submit named events with byte-slice
// arguments to peers and subscribe to named events the same way. Every
// package under internal/ is an implementation detail reachable only
// through a Client.
package rudp

import (
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/netrelay/rudp/internal/dispatcher"
	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/wiremsg"
	"github.com/netrelay/rudp/internal/workers"
)

// Transport is the collaborator-provided carrier surface a Client drives:
// one transmit path per reliable role plus the shared unreliable
// broadcast path. See [github.com/netrelay/rudp/internal/hostsim] for a
// reference implementation.
type Transport = dispatcher.Transport

// Listener receives the argument list of one delivered event. Events a peer
// sends through the same endpoint arrive in submission order; events routed
// to different endpoints (S, M, B) carry no ordering relative to each other.
type Listener func(peer string, args [][]byte)

// Sentinel errors returned by Client methods.
var (
	ErrSubmitTooLarge   = model.ErrSubmitTooLarge
	ErrNilArgument      = model.ErrNilArgument
	ErrPeerNotConnected = model.ErrPeerNotConnected
)

// Client is the public façade over one dispatcher instance: one per
// connection-carrying participant, whether that is a client talking to a
// single server peer or a server tracking many client peers.
type Client struct {
	d       *dispatcher.Dispatcher
	codec   *wiremsg.Codec
	logger  model.Logger
	manager *workers.Manager

	mu              sync.Mutex
	globalListeners map[string][]Listener
	peerListeners   map[string]map[string][]Listener
}

// Config configures a Client. The zero value is invalid; use [NewConfig].
type Config struct {
	dispatcherConfig *dispatcher.Config
	poolSize         int
	tickInterval     time.Duration
	logger           model.Logger
}

// Option configures a [Config].
type Option func(*Config)

// NewConfig returns a Config with sane defaults, customized by the given
// options.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		dispatcherConfig: dispatcher.NewConfig(),
		poolSize:         192, // 64 peers' worth of S/M/B leases by default
		tickInterval:     50 * time.Millisecond,
		logger:           log.Log,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// WithDispatcherConfig overrides the per-role endpoint configuration.
func WithDispatcherConfig(c *dispatcher.Config) Option {
	return func(cfg *Config) { cfg.dispatcherConfig = c }
}

// WithPoolSize overrides the carrier-slot pool size.
func WithPoolSize(n int) Option {
	return func(cfg *Config) { cfg.poolSize = n }
}

// WithTickInterval overrides how often endpoints are driven forward.
func WithTickInterval(d time.Duration) Option {
	return func(cfg *Config) { cfg.tickInterval = d }
}

// WithLogger configures the passed logger.
func WithLogger(logger model.Logger) Option {
	return func(cfg *Config) { cfg.logger = logger }
}

// NewClient wires a Client to transport and starts its tick loop. Callers
// still AttachPeer each participant as it joins.
func NewClient(transport Transport, cfg *Config) *Client {
	if cfg == nil {
		cfg = NewConfig()
	}
	c := &Client{
		d:               dispatcher.New(cfg.dispatcherConfig, transport, cfg.poolSize),
		codec:           wiremsg.NewCodec(),
		logger:          cfg.logger,
		manager:         workers.NewManager(),
		globalListeners: make(map[string][]Listener),
		peerListeners:   make(map[string]map[string][]Listener),
	}
	c.d.Connect(c.dispatch)
	c.d.StartTickLoop(c.manager, cfg.tickInterval)
	return c
}

// dispatch decodes one delivered envelope (the handshake literal never
// reaches here; the dispatcher swallows it) and fans it out to every
// listener subscribed to its event name, both global and peer-scoped.
func (c *Client) dispatch(peer string, msg model.Message) {
	messages, err := c.codec.Decode(msg)
	if err != nil || len(messages) == 0 {
		c.logger.Debugf("rudp: dropping malformed envelope from %s: %v", peer, err)
		return
	}
	eventName := string(messages[0])
	args := toArgs(messages[1:])

	c.mu.Lock()
	listeners := append([]Listener(nil), c.globalListeners[eventName]...)
	if byEvent, ok := c.peerListeners[peer]; ok {
		listeners = append(listeners, byEvent[eventName]...)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		listener(peer, args)
	}
}

func toArgs(messages []model.Message) [][]byte {
	args := make([][]byte, len(messages))
	for i, m := range messages {
		args[i] = []byte(m)
	}
	return args
}

func (c *Client) envelope(eventName string, args [][]byte) (model.Message, error) {
	for _, arg := range args {
		if arg == nil {
			return nil, model.ErrNilArgument
		}
	}
	messages := make([]model.Message, 0, len(args)+1)
	messages = append(messages, model.Message(eventName))
	for _, arg := range args {
		messages = append(messages, model.Message(arg))
	}
	payload, err := c.codec.Encode(messages)
	if err != nil {
		return nil, fmt.Errorf("rudp: %w", err)
	}
	return model.Message(payload), nil
}

// BroadcastToAll submits eventName/args for reliable delivery to every
// attached peer.
func (c *Client) BroadcastToAll(eventName string, args ...[]byte) error {
	msg, err := c.envelope(eventName, args)
	if err != nil {
		return err
	}
	return c.d.BroadcastToAll(msg)
}

// BroadcastToPeer submits eventName/args for reliable unicast delivery to
// peer.
func (c *Client) BroadcastToPeer(peer, eventName string, args ...[]byte) error {
	msg, err := c.envelope(eventName, args)
	if err != nil {
		return err
	}
	return c.d.BroadcastToPeer(peer, msg)
}

// BroadcastToServer submits eventName/args for reliable client-to-server
// delivery. serverPeerID names the server's peer handle from this
// Client's point of view.
func (c *Client) BroadcastToServer(serverPeerID, eventName string, args ...[]byte) error {
	return c.BroadcastToPeer(serverPeerID, eventName, args...)
}

// UnreliableBroadcastToAll submits eventName/args on the shared
// unreliable endpoint.
func (c *Client) UnreliableBroadcastToAll(eventName string, args ...[]byte) error {
	msg, err := c.envelope(eventName, args)
	if err != nil {
		return err
	}
	return c.d.UnreliableBroadcastToAll(msg)
}

// Connect subscribes listener to every delivery of eventName from any
// peer.
func (c *Client) Connect(eventName string, listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.globalListeners[eventName] = append(c.globalListeners[eventName], listener)
}

// ConnectForPeer subscribes listener to eventName deliveries from peer
// only. Intended for the server side, which tracks individual peers
// separately rather than fanning every event out to one global handler.
func (c *Client) ConnectForPeer(peer, eventName string, listener Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byEvent, ok := c.peerListeners[peer]
	if !ok {
		byEvent = make(map[string][]Listener)
		c.peerListeners[peer] = byEvent
	}
	byEvent[eventName] = append(byEvent[eventName], listener)
}

// AttachPeer creates the endpoint set for a newly joined peer, leasing its
// carrier slots from the pool.
func (c *Client) AttachPeer(peer string) error {
	return c.d.AttachPeer(peer)
}

// DetachPeer destroys peer's endpoints, releases its carrier leases, and
// drops its peer-scoped listener registrations.
func (c *Client) DetachPeer(peer string) {
	c.d.DetachPeer(peer)
	c.mu.Lock()
	delete(c.peerListeners, peer)
	c.mu.Unlock()
}

// UnlockPeer clears peer's handshake lock without waiting for the
// handshake literal to arrive, e.g. when the transport already
// authenticates peers out of band.
func (c *Client) UnlockPeer(peer string) {
	c.d.UnlockPeer(peer)
}

// SetPeerBlocked toggles peer's blocking-modal state, excluding its S
// endpoint from outbound routing while true.
func (c *Client) SetPeerBlocked(peer string, blocked bool) {
	c.d.SetPeerBlocked(peer, blocked)
}

// SendReady emits the handshake literal to peer, unlocking transmission on
// this side's matching endpoints immediately and on peer's once the literal
// is received there.
func (c *Client) SendReady(peer string) error {
	return c.d.BroadcastToPeer(peer, model.ReadyLiteral)
}

// OnReceive hands one inbound frame from peer's carrier for role to the
// matching endpoint. A carrier host (see
// [github.com/netrelay/rudp/internal/hostsim]) calls this from its own
// receive callback; it is the other half of the [Transport] contract a
// Client drives.
func (c *Client) OnReceive(peer string, role dispatcher.Role, header uint32, payload []byte) {
	c.d.OnReceive(peer, role, header, payload)
}

// Shutdown stops the tick loop and waits for it to exit.
func (c *Client) Shutdown() {
	c.manager.StartShutdown()
	c.manager.WaitWorkersShutdown()
}
