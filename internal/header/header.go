// Package header implements the bit-packed 32-bit frame header codec shared
// by every reliable endpoint: extracting and replacing bit ranges, and
// splitting/merging the optional piggybacked secondary header.
package header

import "github.com/netrelay/rudp/internal/optional"

const (
	sackOffset, sackWidth = 0, 8
	ackOffset, ackWidth   = 8, 4
	dataBit               = 12
	secondBit             = 13
	seqOffset, seqWidth   = 14, 4
	sack2Offset           = 18
	ack2Offset            = 26
)

func mask(width uint) uint32 {
	return (uint32(1) << width) - 1
}

// Extract returns the width-bit field starting at offset, right-aligned.
func Extract(x uint32, offset, width uint) uint32 {
	return (x >> offset) & mask(width)
}

// Replace returns x with its width-bit field at offset overwritten by the
// low width bits of v; every other bit of x is unchanged.
func Replace(x uint32, offset, width uint, v uint32) uint32 {
	cleared := x &^ (mask(width) << offset)
	return cleared | ((v & mask(width)) << offset)
}

// Fields is the decoded content of a primary frame header.
type Fields struct {
	Ack       uint32
	Sack      uint32
	Seq       optional.Value[uint32]
	HasSecond bool
}

// Encode packs ack, sack and an optional seq into a primary header. The
// SECOND bit is left clear; callers that need a piggybacked header call
// Merge afterward.
func Encode(ack, sack uint32, seq optional.Value[uint32]) uint32 {
	var h uint32
	h = Replace(h, sackOffset, sackWidth, sack)
	h = Replace(h, ackOffset, ackWidth, ack)
	if !seq.IsNone() {
		h = Replace(h, dataBit, 1, 1)
		h = Replace(h, seqOffset, seqWidth, seq.Unwrap())
	}
	return h
}

// Decode unpacks a primary header into its constituent fields. It does not
// interpret the SECOND bit's payload; use Split for that.
func Decode(h uint32) Fields {
	f := Fields{
		Ack:       Extract(h, ackOffset, ackWidth),
		Sack:      Extract(h, sackOffset, sackWidth),
		HasSecond: Extract(h, secondBit, 1) == 1,
	}
	if Extract(h, dataBit, 1) == 1 {
		f.Seq = optional.Some(Extract(h, seqOffset, seqWidth))
	}
	return f
}

// Split separates a header into its primary component (with SECOND and the
// secondary bit range cleared) and, if SECOND was set, the reconstructed
// secondary header as a bare (ack, sack) pair packed the same way a primary
// header packs them.
func Split(h uint32) (primary uint32, secondary optional.Value[uint32]) {
	primary = Replace(h, secondBit, 1, 0)
	primary = Replace(primary, sack2Offset, 12, 0)
	if Extract(h, secondBit, 1) == 0 {
		return primary, optional.None[uint32]()
	}
	sack2 := Extract(h, sack2Offset, 8)
	ack2 := Extract(h, ack2Offset, 4)
	sec := Replace(uint32(0), sackOffset, sackWidth, sack2)
	sec = Replace(sec, ackOffset, ackWidth, ack2)
	return primary, optional.Some(sec)
}

// Merge packs secondary's (ack, sack) pair into bits 18..29 of primary and
// sets SECOND. secondary is interpreted the same way a primary header packs
// ack/sack, i.e. as produced by Encode with no seq.
func Merge(primary uint32, secondary uint32) uint32 {
	sack2 := Extract(secondary, sackOffset, sackWidth)
	ack2 := Extract(secondary, ackOffset, ackWidth)
	h := Replace(primary, secondBit, 1, 1)
	h = Replace(h, sack2Offset, 8, sack2)
	h = Replace(h, ack2Offset, 4, ack2)
	return h
}
