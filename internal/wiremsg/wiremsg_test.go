package wiremsg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/netrelay/rudp/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec()
	in := []model.Message{
		model.Message("hello"),
		model.Message(""),
		model.Message("world!"),
	}
	encoded, err := c.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d messages, want %d", len(out), len(in))
	}
	for i := range in {
		if !bytes.Equal(in[i], out[i]) {
			t.Fatalf("message %d: got %q, want %q", i, out[i], in[i])
		}
	}
}

func TestEncodeEmptyBatch(t *testing.T) {
	c := NewCodec()
	encoded, err := c.Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no messages, got %d", len(out))
	}
}

func TestEncodeRejectsTooManyMessages(t *testing.T) {
	c := NewCodec()
	messages := make([]model.Message, MaxMessagesPerPacket+1)
	for i := range messages {
		messages[i] = model.Message("x")
	}
	if _, err := c.Encode(messages); err == nil {
		t.Fatal("expected an error for exceeding the message cap")
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	c := NewCodec()
	encoded, err := c.Encode([]model.Message{model.Message("hello")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Decode(encoded[:len(encoded)-2]); err == nil {
		t.Fatal("expected an error decoding a truncated payload")
	}
}

func TestEncodeRejectsOversizeMessage(t *testing.T) {
	c := NewCodec()
	huge := model.Message(strings.Repeat("x", 0x10000))
	if _, err := c.Encode([]model.Message{huge}); err == nil {
		t.Fatal("expected an error for a message that doesn't fit a 16-bit length prefix")
	}
}
