// Package baseenc implements the base-N text encoding carrier slots use to
// escape opaque binary frames into the text-only channels a game-engine
// event or property carrier typically offers.
//
// The module treats the alphabet as an implementation detail of the
// collaborator carrier: this package fixes it to unpadded base32, whose
// upper-case letters-and-digits alphabet has no characters that need
// escaping. It is wider than base64: every 5 input bytes become 8 characters.
package baseenc

import "encoding/base32"

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode returns the base32 text encoding of data, without padding.
func Encode(data []byte) string {
	return encoding.EncodeToString(data)
}

// Decode reverses [Encode]. It returns an error if text is not valid
// unpadded base32.
func Decode(text string) ([]byte, error) {
	return encoding.DecodeString(text)
}
