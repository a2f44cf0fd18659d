package dispatcher

import (
	"github.com/netrelay/rudp/internal/reliable"
	"github.com/netrelay/rudp/internal/unreliable"
)

// peer holds the per-peer endpoint set and the carrier-slot leases backing
// it. A peer is created when the host acknowledges a newly joined peer and
// destroyed when that peer disappears.
type peer struct {
	id string

	s *reliable.Endpoint
	m *reliable.Endpoint
	b *reliable.Endpoint
	u *unreliable.Endpoint

	leaseS, leaseM, leaseB int

	// blocked mirrors the host's "blocking modal state": while true, S
	// is never chosen for outbound routing even if it would otherwise
	// qualify.
	blocked bool
}

func (d *Dispatcher) newPeer(id string) (*peer, error) {
	leaseS, err := d.pool.TryLease()
	if err != nil {
		return nil, err
	}
	leaseM, err := d.pool.TryLease()
	if err != nil {
		d.pool.Release(leaseS)
		return nil, err
	}
	leaseB, err := d.pool.TryLease()
	if err != nil {
		d.pool.Release(leaseS)
		d.pool.Release(leaseM)
		return nil, err
	}

	p := &peer{
		id:     id,
		s:      reliable.NewEndpoint(d.cfg.sConfig, nil),
		m:      reliable.NewEndpoint(d.cfg.mConfig, nil),
		b:      reliable.NewEndpoint(d.cfg.bConfig, nil),
		u:      unreliable.NewEndpoint(d.cfg.uConfig, nil),
		leaseS: leaseS,
		leaseM: leaseM,
		leaseB: leaseB,
	}

	p.s.SetTransmitCallback(func(h uint32, payload []byte) {
		d.cfg.logger.Debugf("dispatcher: peer %s: S tx seq-header=%#x", id, h)
		if err := d.transport.TransmitS(id, h, payload); err != nil {
			d.cfg.logger.Warnf("dispatcher: peer %s: S carrier rejected frame of %d bytes: %v", id, len(payload), err)
		}
	})
	p.b.SetTransmitCallback(func(h uint32, payload []byte) {
		if err := d.transport.TransmitB(id, h, payload); err != nil {
			d.cfg.logger.Warnf("dispatcher: peer %s: B carrier rejected frame of %d bytes: %v", id, len(payload), err)
		}
	})
	p.m.SetTransmitCallback(func(h uint32, payload []byte) {
		if err := d.transport.TransmitM(id, h, payload); err != nil {
			d.cfg.logger.Warnf("dispatcher: peer %s: M carrier rejected frame of %d bytes: %v", id, len(payload), err)
		}
	})

	// Piggyback wiring: M's secondary header carries S's or B's would-be
	// ack header, per §4.6, so a single M carrier can acknowledge either
	// paired endpoint without a carrier of its own. Only one secondary
	// header fits per frame, so the rotation alternates which endpoint's
	// header M offers on successive ticks; on receipt the header is
	// harmlessly forwarded to both local endpoints, since an ack/sack
	// pair that doesn't fall within an endpoint's current send window is
	// simply ignored by OnReceiveFrame.
	rotation := &secondHeaderRotation{peeks: []func() (uint32, bool){p.s.PeekAckHeader, p.b.PeekAckHeader}}
	p.m.SetSecondHeaderGetter(rotation.get)
	p.m.SetSecondHeaderCallback(func(h uint32) {
		p.s.OnReceiveFrame(h, nil)
		p.b.OnReceiveFrame(h, nil)
	})

	p.s.SetReceiveCallback(d.receiveHandler(p, RoleS))
	p.m.SetReceiveCallback(d.receiveHandler(p, RoleM))
	p.b.SetReceiveCallback(d.receiveHandler(p, RoleB))
	p.u.SetReceiveCallback(d.unreliableReceiveHandler(p))

	p.s.SetOnDestroyCallback(func() { d.pool.Release(p.leaseS) })
	p.m.SetOnDestroyCallback(func() { d.pool.Release(p.leaseM) })
	p.b.SetOnDestroyCallback(func() { d.pool.Release(p.leaseB) })

	return p, nil
}

func (p *peer) destroy() {
	p.s.Destroy()
	p.m.Destroy()
	p.b.Destroy()
}

func (p *peer) unlock() {
	p.s.UnlockTransmission()
	p.m.UnlockTransmission()
	p.b.UnlockTransmission()
}

// secondHeaderRotation round-robins across a set of would-be-ack getters,
// offering whichever one is ready starting from the slot after the last
// one served. It backs M's SetSecondHeaderGetter so S and B take turns
// riding M's secondary header instead of one starving the other.
type secondHeaderRotation struct {
	peeks []func() (uint32, bool)
	next  int
}

func (r *secondHeaderRotation) get() (uint32, bool) {
	for i := range r.peeks {
		idx := (r.next + i) % len(r.peeks)
		if h, ok := r.peeks[idx](); ok {
			r.next = (idx + 1) % len(r.peeks)
			return h, true
		}
	}
	return 0, false
}
