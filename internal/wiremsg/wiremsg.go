// Package wiremsg implements the ordered-message serializer that encodes a
// packet's message batch into the opaque payload byte string a frame
// carries, standing in for the host's own binary object serializer (out of
// scope per the protocol core's collaborator boundary).
//
// Encoding is a 1-byte message count (the core never drains more than 15
// messages into one packet, so the count always fits) followed by each
// message as a 2-byte big-endian length prefix and its raw bytes.
package wiremsg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/netrelay/rudp/internal/bytesx"
	"github.com/netrelay/rudp/internal/model"
)

// MaxMessagesPerPacket is the hard cap on how many messages one encoded
// packet may contain, imposed so the count prefix always fits a single
// byte's worth of framing.
const MaxMessagesPerPacket = 15

// Codec serializes and deserializes a packet's message batch.
type Codec struct{}

// NewCodec returns the default wire codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Encode serializes messages into an opaque payload byte string. It fails
// if there are more than [MaxMessagesPerPacket] messages or any single
// message does not fit a 16-bit length prefix.
func (c *Codec) Encode(messages []model.Message) ([]byte, error) {
	if len(messages) > MaxMessagesPerPacket {
		return nil, fmt.Errorf("wiremsg: %d messages exceeds cap of %d", len(messages), MaxMessagesPerPacket)
	}
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(len(messages)))
	for _, m := range messages {
		if len(m) > 0xffff {
			return nil, fmt.Errorf("wiremsg: message of %d bytes does not fit a 16-bit length prefix", len(m))
		}
		bytesx.WriteUint16(buf, uint16(len(m)))
		buf.Write(m)
	}
	return buf.Bytes(), nil
}

// Decode parses a payload byte string produced by Encode back into its
// message batch.
func (c *Codec) Decode(data []byte) ([]model.Message, error) {
	buf := bytes.NewBuffer(data)
	count, err := buf.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("wiremsg: %w", err)
	}
	messages := make([]model.Message, 0, count)
	for i := 0; i < int(count); i++ {
		length, err := bytesx.ReadUint16(buf)
		if err != nil {
			return nil, fmt.Errorf("wiremsg: reading length of message %d: %w", i, err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(buf, payload); err != nil {
			return nil, fmt.Errorf("wiremsg: reading body of message %d: %w", i, err)
		}
		messages = append(messages, model.Message(payload))
	}
	return messages, nil
}
