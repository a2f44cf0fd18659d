package hostsim

import "encoding/binary"

// FrameHeaderSize is the fixed width mergeFrame prepends to every payload.
// Callers sizing a fixed-width carrier slot (e.g. the S endpoint's ability
// slot) to actually fit a full frame must budget this on top of whatever
// the endpoint's own max packet size is.
const FrameHeaderSize = 4

// mergeFrame packs a frame header and its optional payload into one byte
// string: a 4-byte little-endian header followed by payload, matching §6's
// "all integers little-endian" rule. Carriers that speak raw bytes (as
// opposed to base-N text) use this directly as their wire unit.
func mergeFrame(header uint32, payload []byte) []byte {
	buf := make([]byte, FrameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(buf, header)
	copy(buf[FrameHeaderSize:], payload)
	return buf
}

// splitFrame reverses mergeFrame. It returns ok=false if buf is too short
// to contain a header.
func splitFrame(buf []byte) (header uint32, payload []byte, ok bool) {
	if len(buf) < FrameHeaderSize {
		return 0, nil, false
	}
	header = binary.LittleEndian.Uint32(buf[:FrameHeaderSize])
	if len(buf) > FrameHeaderSize {
		payload = buf[FrameHeaderSize:]
	}
	return header, payload, true
}
