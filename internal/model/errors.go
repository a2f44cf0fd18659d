package model

import "errors"

// User-facing errors, returned directly to the caller that triggered them.
var (
	// ErrSubmitTooLarge indicates that a submitted message exceeds the
	// endpoint's configured maximum message size.
	ErrSubmitTooLarge = errors.New("rudp: message exceeds max_message_size")

	// ErrNilArgument indicates a nil/undefined argument was rejected at a
	// façade boundary.
	ErrNilArgument = errors.New("rudp: nil argument")

	// ErrPeerNotConnected indicates there is no endpoint set for the named
	// peer.
	ErrPeerNotConnected = errors.New("rudp: peer not connected")
)

// Protocol-internal errors. These are never returned to a caller: they are
// counted and the offending frame or packet is dropped, per the propagation
// policy in the error handling design.
var (
	// ErrFramingOverflow indicates a chosen packet's encoded payload exceeds
	// the hard byte cap for a frame. This is a configuration error and is
	// fatal to the frame being built (the tick that would have emitted it is
	// aborted), but never to the endpoint.
	ErrFramingOverflow = errors.New("rudp: packet payload exceeds hard frame cap")

	// ErrDecodeError indicates malformed inbound bytes.
	ErrDecodeError = errors.New("rudp: malformed frame")

	// ErrOutOfWindow indicates an incoming seq falls outside the valid
	// receive window.
	ErrOutOfWindow = errors.New("rudp: seq out of window")

	// ErrDuplicateSeq indicates an incoming seq is already buffered or has
	// already been delivered.
	ErrDuplicateSeq = errors.New("rudp: duplicate seq")
)
