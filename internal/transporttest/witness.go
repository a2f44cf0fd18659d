package transporttest

import (
	"sync"

	"github.com/netrelay/rudp/internal/model"
)

// Witness records every message a receive callback delivers, in delivery
// order, the way the teacher's vpntest.Witness records a PacketReader's log
// for later assertions, adapted here to record plain messages instead of
// packets read off a channel (this harness's endpoints deliver via direct
// callback, not a channel).
type Witness struct {
	mu       sync.Mutex
	messages []model.Message
}

// NewWitness returns an empty Witness.
func NewWitness() *Witness {
	return &Witness{}
}

// Record appends msg to the witnessed log. Wire this (or a closure around
// it) as a reliable/unreliable endpoint's receive callback.
func (w *Witness) Record(msg model.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, append(model.Message(nil), msg...))
}

// Messages returns a copy of the messages recorded so far, in order.
func (w *Witness) Messages() []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

// Len returns the number of messages recorded so far.
func (w *Witness) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

// OrderedPayload concatenates every recorded message's bytes, for
// scenarios that check a reassembled byte stream rather than discrete
// messages.
func (w *Witness) OrderedPayload() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []byte
	for _, m := range w.messages {
		out = append(out, m...)
	}
	return out
}
