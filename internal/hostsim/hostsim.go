// Package hostsim is a small in-memory (and, for one carrier, websocket-
// backed) implementation of the three carrier slot contracts a dispatcher
// consumes: event-style, property-style and ability-style. It exists so the
// dispatcher can be driven end-to-end in tests without a real game engine.
//
// The event and property carriers speak base-N text on the wire via
// [github.com/netrelay/rudp/internal/baseenc], exactly as a text-only
// engine event channel would require; the ability carrier holds raw,
// zero-padded bytes instead. Every carrier is opaque to the dispatcher: the
// dispatcher only ever sees the decoded header/payload bytes.
package hostsim

import "github.com/google/uuid"

// NewPeerID mints a fresh peer identifier, the way a real host mints one
// when a peer attaches to the carrier pool.
func NewPeerID() string {
	return uuid.NewString()
}
