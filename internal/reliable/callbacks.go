package reliable

import "github.com/netrelay/rudp/internal/model"

// Codec serializes and deserializes the message batch carried by one
// packet's payload. [github.com/netrelay/rudp/internal/wiremsg.Codec]
// satisfies this interface and is what the dispatcher wires by default.
type Codec interface {
	Encode(messages []model.Message) ([]byte, error)
	Decode(data []byte) ([]model.Message, error)
}

// TransmitFunc is invoked by Tick at most once per call with the frame this
// endpoint wants to send. payload is nil for an ack-only frame.
type TransmitFunc func(header uint32, payload []byte)

// ReceiveQueue is the handle a ReceiveFunc uses to drain newly delivered
// messages, in order.
type ReceiveQueue interface {
	Dequeue() (model.Message, bool)
	Len() int
}

// ReceiveFunc is invoked synchronously from OnReceiveFrame whenever an
// in-order run was assembled, with a handle to drain it.
type ReceiveFunc func(q ReceiveQueue)

// AckFunc is invoked once per freshly acked seq, from within
// OnReceiveFrame.
type AckFunc func(seq uint32)

// SecondHeaderGetter is polled once per Tick for an optional secondary
// header to piggyback (a paired endpoint's would-be ack/sack).
type SecondHeaderGetter func() (header uint32, ok bool)

// SecondHeaderCallback receives a secondary header extracted from an
// inbound frame. The dispatcher wires this to forward the header into the
// paired endpoint's OnReceiveFrame.
type SecondHeaderCallback func(header uint32)
