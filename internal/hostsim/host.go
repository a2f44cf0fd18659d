package hostsim

import (
	"github.com/netrelay/rudp/internal/baseenc"
	"github.com/netrelay/rudp/internal/dispatcher"
)

// OnReceiveFunc matches [dispatcher.Dispatcher.OnReceive]'s signature. A
// Host forwards every frame it decodes off its inbound carriers to one of
// these, one per locally attached peer dispatcher.
type OnReceiveFunc func(peerID string, role dispatcher.Role, header uint32, payload []byte)

// directionalCarriers is the carrier set one side transmits on; the other
// side's matching set is what it receives on.
type directionalCarriers struct {
	s *AbilityCarrier
	m *EventCarrier
	b *PropertyCarrier
	u *PropertyCarrier
}

func newDirectionalCarriers(eventByteBudget, abilitySlotSize int) directionalCarriers {
	return directionalCarriers{
		s: NewAbilityCarrier(abilitySlotSize),
		m: NewEventCarrier(eventByteBudget),
		b: NewPropertyCarrier(),
		u: NewPropertyCarrier(),
	}
}

// Host implements [dispatcher.Transport] for one side of a two-party link,
// over a fixed set of in-memory carriers shared with the other side. It is
// the reference carrier host named in §4.7: a real game engine's event,
// property and ability slots stand in for out/in here.
type Host struct {
	localID, remoteID string
	out, in           directionalCarriers
	recv              OnReceiveFunc
}

// NewLinkedHosts builds two Hosts, localID and remoteID, sharing one set of
// carriers per direction, each forwarding inbound frames to the given
// OnReceiveFunc. This is the harness the root package's Client tests and
// [github.com/netrelay/rudp/internal/endpointbenchcmd] drive instead of a
// real carrier-providing engine.
//
// abilitySlotSize is the fixed byte width of the S endpoint's ability slot
// (see [AbilityCarrier]); it must be at least the S profile's configured
// max packet size plus [FrameHeaderSize] (see
// [github.com/netrelay/rudp/internal/dispatcher.Config.SMaxPacketSize]),
// or every frame S tries to send will be rejected by Trigger as too large.
func NewLinkedHosts(eventByteBudget, abilitySlotSize int, localID, remoteID string, onReceiveLocal, onReceiveRemote OnReceiveFunc) (local, remote *Host) {
	localToRemote := newDirectionalCarriers(eventByteBudget, abilitySlotSize)
	remoteToLocal := newDirectionalCarriers(eventByteBudget, abilitySlotSize)

	local = &Host{localID: localID, remoteID: remoteID, out: localToRemote, in: remoteToLocal, recv: onReceiveLocal}
	remote = &Host{localID: remoteID, remoteID: localID, out: remoteToLocal, in: localToRemote, recv: onReceiveRemote}

	local.wire()
	remote.wire()
	return local, remote
}

func (h *Host) wire() {
	h.in.s.OnReady(func(peer string, slot []byte) {
		header, payload, ok := splitFrame(slot)
		if !ok {
			return
		}
		h.recv(h.remoteID, dispatcher.RoleS, header, payload)
	})
	h.in.m.OnEvent("M", func(peer, text string) {
		raw, err := baseenc.Decode(text)
		if err != nil {
			return
		}
		header, payload, ok := splitFrame(raw)
		if !ok {
			return
		}
		h.recv(h.remoteID, dispatcher.RoleM, header, payload)
	})
	h.in.b.OnChannelChange("B", func(text string) {
		raw, err := baseenc.Decode(text)
		if err != nil {
			return
		}
		header, payload, ok := splitFrame(raw)
		if !ok {
			return
		}
		h.recv(h.remoteID, dispatcher.RoleB, header, payload)
	})
	h.in.u.OnChannelChange("U", func(text string) {
		raw, err := baseenc.Decode(text)
		if err != nil {
			return
		}
		header, payload, ok := splitFrame(raw)
		if !ok {
			return
		}
		h.recv(h.remoteID, dispatcher.RoleU, header, payload)
	})
}

// OutboundMCarrier exposes the event-style carrier this host transmits M
// frames on, for test and demo callers that want to exercise loss,
// duplication, or reordering (see [EventCarrier.DropCall],
// [EventCarrier.DuplicateCall], [EventCarrier.FlushOrder]) without going
// through the dispatcher.
func (h *Host) OutboundMCarrier() *EventCarrier {
	return h.out.m
}

// TransmitS implements [dispatcher.Transport].
func (h *Host) TransmitS(peer string, header uint32, payload []byte) error {
	return h.out.s.Trigger(peer, mergeFrame(header, payload))
}

// TransmitM implements [dispatcher.Transport].
func (h *Host) TransmitM(peer string, header uint32, payload []byte) error {
	return h.out.m.BroadcastToPeer(peer, "M", mergeFrame(header, payload))
}

// TransmitB implements [dispatcher.Transport].
func (h *Host) TransmitB(peer string, header uint32, payload []byte) error {
	h.out.b.SetChannel("B", mergeFrame(header, payload))
	return nil
}

// TransmitU implements [dispatcher.Transport].
func (h *Host) TransmitU(header uint32, payload []byte) error {
	h.out.u.SetChannel("U", mergeFrame(header, payload))
	return nil
}

// Flush delivers every queued M-carrier call, since unlike the property and
// ability carriers, EventCarrier does not deliver inline (it supports
// explicit reordering for tests). Call this once per tick round in tests
// that don't care about reordering.
func (h *Host) Flush() {
	h.out.m.Flush()
}
