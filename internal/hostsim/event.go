package hostsim

import (
	"errors"
	"sync"

	"github.com/netrelay/rudp/internal/baseenc"
)

// ErrEventTooLarge is returned by BroadcastToPeer when the base-N encoded
// text would exceed the carrier's per-call byte budget.
var ErrEventTooLarge = errors.New("hostsim: event text exceeds per-call byte budget")

// EventCarrier is an in-memory event-style carrier: broadcast_to_peer /
// on_event, with a hard per-call byte budget and, for tests, the ability to
// mark specific calls as lost or duplicated and to replay calls out of
// arrival order.
//
// Calls are numbered from 1 in the order BroadcastToPeer is invoked, the
// same way a test fixes losses against a fixed list of packet IDs rather
// than a random rate. Delivery does not happen inline: every accepted call
// is queued, and a test driver calls Flush (or FlushOrder, to exercise
// reordering) to hand queued calls to registered handlers.
type EventCarrier struct {
	mu         sync.Mutex
	byteBudget int
	handlers   map[string][]func(peer, text string)

	callSeq   int
	drop      map[int]int
	duplicate map[int]int
	pending   []queuedCall
}

type queuedCall struct {
	eventName string
	peer      string
	text      string
}

// NewEventCarrier returns an EventCarrier enforcing byteBudget bytes of
// base-N text per call.
func NewEventCarrier(byteBudget int) *EventCarrier {
	return &EventCarrier{
		byteBudget: byteBudget,
		handlers:   make(map[string][]func(peer, text string)),
		drop:       make(map[int]int),
		duplicate:  make(map[int]int),
	}
}

// OnEvent registers handler to be invoked once per queued call delivered for
// eventName, in the order Flush processes them.
func (c *EventCarrier) OnEvent(eventName string, handler func(peer, text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[eventName] = append(c.handlers[eventName], handler)
}

// BroadcastToPeer base-N encodes payload and queues it for delivery to
// peer's registered eventName handlers. It reports ErrEventTooLarge without
// queuing anything if the encoded text would exceed the byte budget.
func (c *EventCarrier) BroadcastToPeer(peer, eventName string, payload []byte) error {
	text := baseenc.Encode(payload)
	if len(text) > c.byteBudget {
		return ErrEventTooLarge
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.callSeq++
	seq := c.callSeq

	if n := c.drop[seq]; n > 0 {
		c.drop[seq] = n - 1
		return nil
	}
	call := queuedCall{eventName: eventName, peer: peer, text: text}
	c.pending = append(c.pending, call)
	if n := c.duplicate[seq]; n > 0 {
		c.duplicate[seq] = n - 1
		c.pending = append(c.pending, call)
	}
	return nil
}

// DropCall marks the n-th BroadcastToPeer call (1-indexed, counting every
// call regardless of event name) as lost.
func (c *EventCarrier) DropCall(seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop[seq]++
}

// DuplicateCall marks the n-th BroadcastToPeer call for one extra delivery.
func (c *EventCarrier) DuplicateCall(seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duplicate[seq]++
}

// Flush delivers every queued call to its event's handlers, in the order
// BroadcastToPeer queued them, and empties the queue.
func (c *EventCarrier) Flush() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	c.deliver(pending)
}

// FlushOrder delivers the currently queued calls in the given permutation
// of indices (0-based, into the queue as it stood when FlushOrder was
// called) instead of arrival order, to exercise reordering. len(order) must
// equal the number of queued calls.
func (c *EventCarrier) FlushOrder(order []int) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	reordered := make([]queuedCall, len(order))
	for i, idx := range order {
		reordered[i] = pending[idx]
	}
	c.deliver(reordered)
}

func (c *EventCarrier) deliver(calls []queuedCall) {
	for _, call := range calls {
		c.mu.Lock()
		handlers := append([]func(peer, text string){}, c.handlers[call.eventName]...)
		c.mu.Unlock()
		for _, h := range handlers {
			h(call.peer, call.text)
		}
	}
}

// Pending returns the number of calls currently queued, for tests that want
// to assert on queue depth before flushing.
func (c *EventCarrier) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
