// Package reliable implements the Reliable Endpoint: a Selective-Repeat
// ARQ state machine running over opaque carrier frames (a 32-bit header
// plus a short payload). It owns the send and receive sliding-window
// buffers, the retransmission timer table, the RTT estimator, and the
// frame builder; it never touches a carrier directly, only the transmit
// callback wired by the dispatcher that owns it.
package reliable

import (
	"time"

	"github.com/netrelay/rudp/internal/header"
	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/optional"
	"github.com/netrelay/rudp/internal/serial"
	"github.com/netrelay/rudp/internal/wiremsg"
)

// fastRetransmitThreshold is how many higher acks a slot must accumulate
// before it is treated as a resend candidate regardless of its deadline,
// the supplemented fast-retransmit heuristic.
const fastRetransmitThreshold = 3

// Endpoint is one Reliable Endpoint instance. The zero value is invalid;
// use [NewEndpoint].
type Endpoint struct {
	cfg    *Config
	space  serial.Space
	window uint32
	codec  Codec
	logger model.Logger

	state State

	ackExpected uint32
	nextToSend  uint32
	outBuffer   []outSlot

	packetExpected uint32
	inTooFar       uint32
	inBuffer       []inSlot

	rtt time.Duration

	sendQueue    *messageQueue
	receiveQueue *messageQueue

	lastAckSentTime time.Time

	transmitFn   TransmitFunc
	receiveFn    ReceiveFunc
	ackFn        AckFunc
	secondGetter SecondHeaderGetter
	secondCb     SecondHeaderCallback
	onDestroyFn  func()

	// counters, surfaced for tests and logging; never affect behavior.
	decodeErrors     uint64
	outOfWindowDrops uint64
	duplicateDrops   uint64
	framingOverflows uint64
	resends          uint64
}

// NewEndpoint constructs a Reliable Endpoint in the Created state. If codec
// is nil, the default [wiremsg.Codec] is used.
func NewEndpoint(cfg *Config, codec Codec) *Endpoint {
	if cfg == nil {
		cfg = NewConfig()
	}
	if codec == nil {
		codec = wiremsg.NewCodec()
	}
	window := cfg.window()
	e := &Endpoint{
		cfg:          cfg,
		space:        serial.NewSpace(cfg.seqBits),
		window:       window,
		codec:        codec,
		logger:       cfg.logger,
		state:        Created,
		outBuffer:    make([]outSlot, window),
		inBuffer:     make([]inSlot, window),
		sendQueue:    newMessageQueue(),
		receiveQueue: newMessageQueue(),
	}
	e.inTooFar = e.space.Move(e.packetExpected, int(window))
	return e
}

// State returns the endpoint's current lifecycle state.
func (e *Endpoint) State() State {
	return e.state
}

// UnlockTransmission clears the initial lock that prevents outbound frames
// before the handshake literal is observed.
func (e *Endpoint) UnlockTransmission() {
	if e.state == Created {
		e.state = Transmitting
	}
}

// Destroy transitions the endpoint to Destroyed. Further Send, Tick and
// OnReceiveFrame calls are no-ops. If an on-destroy callback was wired, it
// runs so the owner can release carrier resources.
func (e *Endpoint) Destroy() {
	e.state = Destroyed
	if e.onDestroyFn != nil {
		e.onDestroyFn()
	}
}

// SetOnDestroyCallback wires a callback invoked once when Destroy runs, so
// the dispatcher can release this endpoint's leased carrier resources.
func (e *Endpoint) SetOnDestroyCallback(fn func()) { e.onDestroyFn = fn }

// SetTransmitCallback wires the callback invoked with each frame to send.
func (e *Endpoint) SetTransmitCallback(fn TransmitFunc) { e.transmitFn = fn }

// SetReceiveCallback wires the callback invoked when messages are ready to
// be drained in order.
func (e *Endpoint) SetReceiveCallback(fn ReceiveFunc) { e.receiveFn = fn }

// SetAckCallback wires the callback invoked once per freshly acked seq.
func (e *Endpoint) SetAckCallback(fn AckFunc) { e.ackFn = fn }

// SetSecondHeaderGetter wires the poll hook used to piggyback a paired
// endpoint's header.
func (e *Endpoint) SetSecondHeaderGetter(fn SecondHeaderGetter) { e.secondGetter = fn }

// SetSecondHeaderCallback wires the hook that receives a piggybacked
// secondary header extracted from an inbound frame.
func (e *Endpoint) SetSecondHeaderCallback(fn SecondHeaderCallback) { e.secondCb = fn }

// Send enqueues message for transmission. It never blocks. It returns the
// current send queue depth, or [model.ErrSubmitTooLarge] if message exceeds
// the configured maximum.
func (e *Endpoint) Send(message model.Message) (int, error) {
	if message.Size() > e.cfg.maxMessageSize {
		return 0, model.ErrSubmitTooLarge
	}
	if e.state == Destroyed {
		return e.sendQueue.Len(), nil
	}
	e.sendQueue.Enqueue(message)
	return e.sendQueue.Len(), nil
}

// outBuffered returns next_to_send - ack_expected, circularly.
func (e *Endpoint) outBuffered() uint32 {
	return e.space.Move(e.nextToSend, -int(e.ackExpected))
}

// OutBuffered exposes out_buffered for tests asserting §8's universal
// invariants.
func (e *Endpoint) OutBuffered() uint32 { return e.outBuffered() }

// AckExpected exposes ack_expected for tests.
func (e *Endpoint) AckExpected() uint32 { return e.ackExpected }

// NextToSend exposes next_to_send for tests.
func (e *Endpoint) NextToSend() uint32 { return e.nextToSend }

// PacketExpected exposes packet_expected for tests.
func (e *Endpoint) PacketExpected() uint32 { return e.packetExpected }

// InTooFar exposes in_too_far for tests.
func (e *Endpoint) InTooFar() uint32 { return e.inTooFar }

// QueueDepth returns the current send queue depth, used by the dispatcher
// for its size-based outbound routing threshold.
func (e *Endpoint) QueueDepth() int { return e.sendQueue.Len() }

// MaxMessageSize returns the configured largest accepted message size,
// used by the dispatcher to decide which endpoint a message belongs on.
func (e *Endpoint) MaxMessageSize() int { return e.cfg.maxMessageSize }

// PeekAckHeader computes this endpoint's current (ack, sack) pair without
// sending a frame or mutating any state. The dispatcher uses it to
// piggyback one endpoint's ack onto another's frame via the secondary
// header. It returns ok=false while the endpoint is not Transmitting.
func (e *Endpoint) PeekAckHeader() (uint32, bool) {
	if e.state != Transmitting {
		return 0, false
	}
	ack := e.space.Move(e.packetExpected, -1)
	sack := e.computeSack(ack)
	return header.Encode(ack, sack, optional.None[uint32]()), true
}

// Tick drives timer-based retransmission, ack throttling, and frame
// emission. It invokes the transmit callback zero or one times.
func (e *Endpoint) Tick(now time.Time) {
	if e.state != Transmitting {
		return
	}

	ack := e.space.Move(e.packetExpected, -1)
	sack := e.computeSack(ack)

	seq, payload, carryingData := e.choosePacket(now)

	var second optional.Value[uint32]
	if e.secondGetter != nil {
		if h, ok := e.secondGetter(); ok {
			second = optional.Some(h)
		}
	}

	ackTimedOut := now.Sub(e.lastAckSentTime) >= e.cfg.ackTimeout()
	if !carryingData && second.IsNone() && !ackTimedOut {
		return
	}

	var seqOpt optional.Value[uint32]
	if carryingData {
		seqOpt = optional.Some(seq)
	}
	h := header.Encode(ack, sack, seqOpt)
	if !second.IsNone() {
		h = header.Merge(h, second.Unwrap())
	}

	e.lastAckSentTime = now
	if e.transmitFn != nil {
		if carryingData {
			e.transmitFn(h, payload)
		} else {
			e.transmitFn(h, nil)
		}
	}
}

func (e *Endpoint) computeSack(ack uint32) uint32 {
	var sack uint32
	for i := uint32(0); i < 8; i++ {
		s := e.space.Move(ack, int(1+i))
		if !e.space.Between(e.packetExpected, s, e.inTooFar) {
			continue
		}
		slot := &e.inBuffer[s%e.window]
		if slot.occupied && slot.seq == s {
			sack |= 1 << i
		}
	}
	return sack
}

// choosePacket implements the §4.4 frame-construction packet-selection
// algorithm: prefer a resend candidate, else drain the send queue into a
// fresh packet if the window has room.
func (e *Endpoint) choosePacket(now time.Time) (seq uint32, payload []byte, ok bool) {
	if idx, found := e.pickResendCandidate(now); found {
		slot := &e.outBuffer[idx]
		slot.retries++
		slot.resendDeadline = now.Add(e.cfg.resendDelay())
		slot.higherACKs = 0
		e.resends++
		e.logger.Debugf("reliable: resending seq=%d retries=%d", slot.seq, slot.retries)
		return slot.seq, slot.payload, true
	}

	if e.outBuffered() >= e.window || e.sendQueue.Len() == 0 {
		return 0, nil, false
	}

	messages, built := e.drainForPacket()
	if !built {
		return 0, nil, false
	}
	encoded, err := e.codec.Encode(messages)
	if err != nil || len(encoded) > e.cfg.maxPacketSize {
		e.framingOverflows++
		return 0, nil, false
	}

	seq = e.nextToSend
	idx := seq % e.window
	e.outBuffer[idx] = outSlot{
		occupied:       true,
		seq:            seq,
		payload:        encoded,
		sentTime:       now,
		resendDeadline: now.Add(e.cfg.resendDelay()),
	}
	e.nextToSend = e.space.Move(e.nextToSend, 1)
	return seq, encoded, true
}

// pickResendCandidate returns the index of the resend candidate with the
// earliest deadline, breaking ties by lowest seq. A zero resendDeadline is
// the NAK-accelerate sentinel and sorts earliest by construction.
func (e *Endpoint) pickResendCandidate(now time.Time) (idx uint32, found bool) {
	var best *outSlot
	var bestIdx uint32
	for i := uint32(0); i < e.window; i++ {
		slot := &e.outBuffer[i]
		if !slot.occupied {
			continue
		}
		due := slot.higherACKs >= fastRetransmitThreshold || !slot.resendDeadline.After(now)
		if !due {
			continue
		}
		if best == nil ||
			slot.resendDeadline.Before(best.resendDeadline) ||
			(slot.resendDeadline.Equal(best.resendDeadline) && slot.seq < best.seq) {
			best = slot
			bestIdx = i
		}
	}
	if best == nil {
		return 0, false
	}
	return bestIdx, true
}

// drainForPacket moves messages from the send queue into a new packet
// while the encoded size estimate stays under the configured cap and the
// message count stays within wiremsg's framing limit.
func (e *Endpoint) drainForPacket() ([]model.Message, bool) {
	var batch []model.Message
	for e.sendQueue.Len() > 0 && len(batch) < wiremsg.MaxMessagesPerPacket {
		msg, _ := e.sendQueue.Peek()
		candidate := append(append([]model.Message{}, batch...), msg)
		encoded, err := e.codec.Encode(candidate)
		if err != nil || len(encoded) > e.cfg.maxPacketSize {
			if len(batch) == 0 {
				// a single message alone doesn't fit: drop it so we
				// don't spin forever trying to send it.
				e.sendQueue.Dequeue()
				e.framingOverflows++
				e.logger.Warnf("reliable: dropping message that overflows max_packet_size=%d", e.cfg.maxPacketSize)
				continue
			}
			break
		}
		e.sendQueue.Dequeue()
		batch = candidate
	}
	return batch, len(batch) > 0
}

// OnReceiveFrame processes one inbound frame. It may invoke the receive
// callback synchronously if an in-order run was assembled, and the ack
// callback once per freshly acked seq.
func (e *Endpoint) OnReceiveFrame(h uint32, payload []byte) {
	if e.state == Destroyed {
		return
	}

	primary, secondary := header.Split(h)
	if !secondary.IsNone() && e.secondCb != nil {
		e.secondCb(secondary.Unwrap())
	}

	fields := header.Decode(primary)
	now := e.cfg.now()

	for e.space.Between(e.ackExpected, fields.Ack, e.nextToSend) {
		e.freeOutSlot(e.ackExpected, now)
		e.ackExpected = e.space.Move(e.ackExpected, 1)
	}

	for i := uint32(0); i < 8; i++ {
		s := e.space.Move(fields.Ack, int(1+i))
		if !e.space.Between(e.ackExpected, s, e.nextToSend) {
			continue
		}
		bitSet := fields.Sack&(1<<i) != 0
		if bitSet {
			e.freeOutSlot(s, now)
			continue
		}
		higherBitSet := (fields.Sack >> (i + 1)) != 0
		if !higherBitSet {
			continue
		}
		idx := s % e.window
		slot := &e.outBuffer[idx]
		if !slot.occupied || slot.seq != s {
			continue
		}
		// A later seq has been selectively acked while s has not: every
		// such sighting nudges s's fast-retransmit counter, independent
		// of the NAK-accelerate sentinel below (which only fires for the
		// oldest unacked slot). pickResendCandidate treats either signal
		// as due.
		slot.higherACKs++
		if s == e.ackExpected {
			slot.resendDeadline = time.Time{}
		}
	}

	if !fields.Seq.IsNone() {
		e.handleIncomingSeq(fields.Seq.Unwrap(), payload)
	}

	if e.receiveQueue.Len() > 0 && e.receiveFn != nil {
		e.receiveFn(e.receiveQueue)
	}
}

func (e *Endpoint) freeOutSlot(seq uint32, now time.Time) {
	idx := seq % e.window
	slot := &e.outBuffer[idx]
	if !slot.occupied || slot.seq != seq {
		return
	}
	sample := now.Sub(slot.sentTime)
	slot.clear()
	if e.ackFn != nil {
		e.ackFn(seq)
	}
	e.sampleRTT(sample)
}

func (e *Endpoint) sampleRTT(sample time.Duration) {
	if sample < 0 {
		return
	}
	if e.rtt == 0 {
		e.rtt = sample
		return
	}
	delta := sample - e.rtt
	if delta < 0 {
		delta = -delta
	}
	if delta < time.Millisecond {
		return
	}
	alpha := 2.0 / (float64(e.window) + 1)
	e.rtt += time.Duration(alpha * float64(sample-e.rtt))
}

func (e *Endpoint) handleIncomingSeq(seq uint32, payload []byte) {
	inWindow := e.space.Between(e.packetExpected, seq, e.inTooFar)
	idx := seq % e.window

	if inWindow {
		slot := &e.inBuffer[idx]
		if slot.occupied && slot.seq == seq {
			e.duplicateDrops++
			e.logger.Debugf("reliable: duplicate seq=%d dropped", seq)
			return
		}
		messages, err := e.codec.Decode(payload)
		if err != nil {
			e.decodeErrors++
			e.logger.Warnf("reliable: decode error on seq=%d: %v", seq, err)
			return
		}
		*slot = inSlot{occupied: true, seq: seq, messages: messages}
		e.drainInOrder()
		return
	}

	// Out of the current window: either already delivered (a duplicate
	// arriving late) or too far ahead of what we can buffer.
	alreadyDelivered := e.space.Between(e.space.Move(e.packetExpected, -int(e.window)), seq, e.packetExpected)
	if alreadyDelivered {
		e.duplicateDrops++
		e.logger.Debugf("reliable: duplicate seq=%d (already delivered) dropped", seq)
	} else {
		e.outOfWindowDrops++
		e.logger.Warnf("reliable: out-of-window seq=%d dropped (packet_expected=%d in_too_far=%d)", seq, e.packetExpected, e.inTooFar)
	}
}

func (e *Endpoint) drainInOrder() {
	for {
		idx := e.packetExpected % e.window
		slot := &e.inBuffer[idx]
		if !slot.occupied || slot.seq != e.packetExpected {
			return
		}
		for _, m := range slot.messages {
			e.receiveQueue.Enqueue(m)
		}
		slot.clear()
		e.packetExpected = e.space.Move(e.packetExpected, 1)
		e.inTooFar = e.space.Move(e.inTooFar, 1)
	}
}

// Counters exposes the protocol-internal error counters (DecodeError,
// OutOfWindow, DuplicateSeq, FramingOverflow) plus the resend count, for
// tests and diagnostics. None of these ever terminate the endpoint.
func (e *Endpoint) Counters() (decodeErrors, outOfWindow, duplicates, framingOverflows, resends uint64) {
	return e.decodeErrors, e.outOfWindowDrops, e.duplicateDrops, e.framingOverflows, e.resends
}
