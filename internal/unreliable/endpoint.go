// Package unreliable implements the Unreliable Endpoint: a best-effort
// sibling of the Reliable Endpoint that shares its submission/receive
// callback surface but drops retransmission entirely. It counts losses on
// the receive side by watching for gaps in the observed sequence byte.
package unreliable

import (
	"time"

	"github.com/apex/log"

	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/wiremsg"
)

// Config holds the recognized configuration options for an [Endpoint].
type Config struct {
	maxMessageSize int
	maxPacketSize  int
	updateInterval time.Duration
	maxSeq         int
	logger         model.Logger
}

// NewConfig returns a Config with sane defaults, customized by options.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		maxMessageSize: 1200,
		maxPacketSize:  1400,
		updateInterval: 50 * time.Millisecond,
		maxSeq:         256,
		logger:         log.Log,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// Option configures a [Config].
type Option func(*Config)

// WithMaxMessageSize sets the largest application message Send accepts.
func WithMaxMessageSize(n int) Option {
	return func(c *Config) { c.maxMessageSize = n }
}

// WithMaxPacketSize sets the cap on serialized payload bytes per frame.
func WithMaxPacketSize(n int) Option {
	return func(c *Config) { c.maxPacketSize = n }
}

// WithUpdateInterval sets the nominal tick period this endpoint expects.
func WithUpdateInterval(d time.Duration) Option {
	return func(c *Config) { c.updateInterval = d }
}

// WithMaxSeq sets the modulus of the sequence byte space. It must not
// exceed 256, the range of a single byte.
func WithMaxSeq(n int) Option {
	return func(c *Config) { c.maxSeq = n }
}

// WithLogger configures the passed [model.Logger].
func WithLogger(logger model.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// Codec serializes and deserializes an unreliable batch's messages.
type Codec interface {
	Encode(messages []model.Message) ([]byte, error)
	Decode(data []byte) ([]model.Message, error)
}

// TransmitFunc is invoked by Tick with the frame to send.
type TransmitFunc func(header uint32, payload []byte)

// ReceiveFunc is invoked once per received batch with its messages.
type ReceiveFunc func(messages []model.Message)

// Endpoint is the Unreliable Endpoint. The zero value is invalid; use
// [NewEndpoint].
type Endpoint struct {
	cfg    *Config
	codec  Codec
	logger model.Logger

	sendQueue []model.Message
	seq       int

	expectedSeq int
	haveSeen    bool

	lost      uint64
	delivered uint64

	transmitFn TransmitFunc
	receiveFn  ReceiveFunc
}

// NewEndpoint constructs an Unreliable Endpoint. If codec is nil, the
// default [wiremsg.Codec] is used.
func NewEndpoint(cfg *Config, codec Codec) *Endpoint {
	if cfg == nil {
		cfg = NewConfig()
	}
	if codec == nil {
		codec = wiremsg.NewCodec()
	}
	return &Endpoint{cfg: cfg, codec: codec, logger: cfg.logger}
}

// SetTransmitCallback wires the callback invoked with each frame to send.
func (e *Endpoint) SetTransmitCallback(fn TransmitFunc) { e.transmitFn = fn }

// SetReceiveCallback wires the callback invoked with each received batch.
func (e *Endpoint) SetReceiveCallback(fn ReceiveFunc) { e.receiveFn = fn }

// Send enqueues message for the next outgoing batch. It never blocks.
func (e *Endpoint) Send(message model.Message) (int, error) {
	if message.Size() > e.cfg.maxMessageSize {
		return 0, model.ErrSubmitTooLarge
	}
	e.sendQueue = append(e.sendQueue, message)
	return len(e.sendQueue), nil
}

// Tick drains the send queue into at most one frame, stamped with the
// current sequence byte and a millisecond timestamp mod 2^16.
func (e *Endpoint) Tick(now time.Time) {
	if len(e.sendQueue) == 0 {
		return
	}

	batch, rest := e.drainBatch()
	e.sendQueue = rest

	encoded, err := e.codec.Encode(batch)
	if err != nil || len(encoded) > e.cfg.maxPacketSize {
		e.logger.Warnf("unreliable: dropping batch of %d messages that overflows max_packet_size=%d", len(batch), e.cfg.maxPacketSize)
		return
	}

	h := encodeHeader(byte(e.seq), nowMillis(now))
	e.seq = (e.seq + 1) % e.cfg.maxSeq

	if e.transmitFn != nil {
		e.transmitFn(h, encoded)
	}
}

func (e *Endpoint) drainBatch() (batch, rest []model.Message) {
	for i, msg := range e.sendQueue {
		candidate := append(append([]model.Message{}, batch...), msg)
		encoded, err := e.codec.Encode(candidate)
		if err != nil || len(encoded) > e.cfg.maxPacketSize {
			if len(batch) == 0 {
				continue
			}
			return batch, e.sendQueue[i:]
		}
		batch = candidate
	}
	return batch, nil
}

// OnReceiveFrame processes one inbound frame. Any gap between the expected
// and observed sequence byte is counted as lost; no recovery is attempted.
func (e *Endpoint) OnReceiveFrame(h uint32, payload []byte) {
	seq, _ := decodeHeader(h)

	if e.haveSeen {
		gap := (int(seq) - e.expectedSeq + e.cfg.maxSeq) % e.cfg.maxSeq
		if gap > 0 {
			e.lost += uint64(gap)
			e.logger.Debugf("unreliable: detected %d lost frame(s) before seq=%d", gap, seq)
		}
	}
	e.haveSeen = true
	e.expectedSeq = (int(seq) + 1) % e.cfg.maxSeq

	messages, err := e.codec.Decode(payload)
	if err != nil {
		e.logger.Warnf("unreliable: decode error on seq=%d: %v", seq, err)
		return
	}
	e.delivered += uint64(len(messages))
	if e.receiveFn != nil {
		e.receiveFn(messages)
	}
}

// Lost returns the number of frames inferred lost from sequence-byte gaps
// since construction (a gap of two sequence numbers counts as two).
func (e *Endpoint) Lost() uint64 { return e.lost }

// Delivered returns the number of messages delivered to the receive
// callback since construction.
func (e *Endpoint) Delivered() uint64 { return e.delivered }

// encodeHeader packs a sequence byte into bits 0-7 and a 16-bit timestamp
// into bits 16-31, leaving bits 8-15 unused. This is the alternate header
// layout §3 assigns to the Unreliable Endpoint.
func encodeHeader(seq byte, ts uint16) uint32 {
	return uint32(seq) | (uint32(ts) << 16)
}

func decodeHeader(h uint32) (seq byte, ts uint16) {
	return byte(h & 0xff), uint16(h >> 16)
}

func nowMillis(t time.Time) uint16 {
	return uint16(t.UnixMilli() % (1 << 16))
}
