package dispatcher

// Transport is the collaborator-provided carrier surface the dispatcher
// drives: one transmit path per reliable role, plus one unreliable
// broadcast path. A concrete implementation (see
// [github.com/netrelay/rudp/internal/hostsim]) maps these onto the host's
// event-style, property-style, or ability-style carrier slots and
// base-N-encodes the wire bytes to survive text-only channels.
type Transport interface {
	// TransmitS sends a frame on peer's S carrier.
	TransmitS(peer string, header uint32, payload []byte) error

	// TransmitM sends a frame on peer's M carrier.
	TransmitM(peer string, header uint32, payload []byte) error

	// TransmitB sends a frame on peer's B carrier.
	TransmitB(peer string, header uint32, payload []byte) error

	// TransmitU sends an unreliable frame, fanned out to every attached
	// peer.
	TransmitU(header uint32, payload []byte) error
}
