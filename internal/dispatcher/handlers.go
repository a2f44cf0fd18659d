package dispatcher

import (
	"bytes"

	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/reliable"
)

// OnReceive hands one inbound frame from peerID's carrier for role to the
// matching endpoint. The host (or [github.com/netrelay/rudp/internal/hostsim])
// calls this from its own carrier callback.
func (d *Dispatcher) OnReceive(peerID string, role Role, header uint32, payload []byte) {
	d.mu.Lock()
	p, ok := d.peers[peerID]
	d.mu.Unlock()
	if !ok {
		return
	}
	switch role {
	case RoleS:
		p.s.OnReceiveFrame(header, payload)
	case RoleM:
		p.m.OnReceiveFrame(header, payload)
	case RoleB:
		p.b.OnReceiveFrame(header, payload)
	case RoleU:
		p.u.OnReceiveFrame(header, payload)
	}
}

// receiveHandler builds the ReceiveFunc wired to a reliable endpoint: it
// drains the queue, checks each message for the handshake literal, and
// dispatches everything else to the registered listeners through the
// trampoline.
func (d *Dispatcher) receiveHandler(p *peer, role Role) reliable.ReceiveFunc {
	return func(q reliable.ReceiveQueue) {
		var messages []model.Message
		for {
			m, ok := q.Dequeue()
			if !ok {
				break
			}
			messages = append(messages, m)
		}
		d.deliver(p, role, messages)
	}
}

func (d *Dispatcher) unreliableReceiveHandler(p *peer) func([]model.Message) {
	return func(messages []model.Message) {
		d.deliver(p, RoleU, messages)
	}
}

func (d *Dispatcher) deliver(p *peer, role Role, messages []model.Message) {
	for _, m := range messages {
		if bytes.Equal(m, model.ReadyLiteral) {
			d.mu.Lock()
			p.unlock()
			d.mu.Unlock()
			continue
		}
		msg := m
		d.trampoline.Run(func() {
			d.mu.Lock()
			listeners := append([]Listener{}, d.globalListeners...)
			listeners = append(listeners, d.peerListeners[p.id]...)
			d.mu.Unlock()
			for _, listener := range listeners {
				listener(p.id, msg)
			}
		})
	}
}
