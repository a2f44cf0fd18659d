// Package serial implements circular sequence-number arithmetic over a
// 2^bits modulus, the way the reliable and unreliable endpoints compare and
// advance their seq counters.
//
// Direct "<" comparisons over a wrapping sequence number are ambiguous once
// the space wraps, so every window comparison in this module goes through
// [Space.Between].
package serial

// Space is a sequence-number space of modulus 2^Bits. The zero value is
// invalid; use [NewSpace].
type Space struct {
	bits     uint
	modulus  uint32
	halfSize uint32
}

// NewSpace returns a Space for the given bit width. Bits must be in [1, 31]
// so that the modulus fits in a uint32 and a half-space is non-zero.
func NewSpace(bits uint) Space {
	if bits < 1 || bits > 31 {
		panic("serial: bits out of range")
	}
	m := uint32(1) << bits
	return Space{bits: bits, modulus: m, halfSize: m / 2}
}

// Bits returns the configured sequence width.
func (s Space) Bits() uint {
	return s.bits
}

// Modulus returns 2^Bits.
func (s Space) Modulus() uint32 {
	return s.modulus
}

// MaxWindow returns the largest window size this space can support
// unambiguously (modulus / 2).
func (s Space) MaxWindow() uint32 {
	return s.halfSize
}

// Move returns (seq + delta) mod modulus, with delta allowed to be negative.
func (s Space) Move(seq uint32, delta int) uint32 {
	m := int64(s.modulus)
	v := (int64(seq) + int64(delta)) % m
	if v < 0 {
		v += m
	}
	return uint32(v)
}

// Between reports whether, stepping forward circularly from a, one reaches
// b strictly before c. Between(a, a, c) is true whenever a != c: a is
// reached immediately upon stepping forward zero times.
func (s Space) Between(a, b, c uint32) bool {
	// distance traveled from a to reach b, and from a to reach c.
	db := s.Move(b, -int(a))
	dc := s.Move(c, -int(a))
	return db < dc
}
