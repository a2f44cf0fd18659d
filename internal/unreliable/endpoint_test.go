package unreliable

import (
	"testing"
	"time"

	"github.com/netrelay/rudp/internal/model"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := encodeHeader(200, 0xbeef)
	seq, ts := decodeHeader(h)
	if seq != 200 {
		t.Fatalf("seq: got %d, want 200", seq)
	}
	if ts != 0xbeef {
		t.Fatalf("ts: got %x, want beef", ts)
	}
}

func TestSendRejectsOversizeMessage(t *testing.T) {
	e := NewEndpoint(NewConfig(WithMaxMessageSize(4)), nil)
	if _, err := e.Send(model.Message("toolong")); err != model.ErrSubmitTooLarge {
		t.Fatalf("got %v, want ErrSubmitTooLarge", err)
	}
}

func TestDeliversInOrderWithoutLoss(t *testing.T) {
	a := NewEndpoint(NewConfig(), nil)
	b := NewEndpoint(NewConfig(), nil)

	var got []model.Message
	b.SetReceiveCallback(func(messages []model.Message) {
		got = append(got, messages...)
	})
	a.SetTransmitCallback(func(h uint32, payload []byte) {
		b.OnReceiveFrame(h, payload)
	})

	for i := 0; i < 10; i++ {
		a.Send(model.Message([]byte{byte(i)}))
		a.Tick(time.Now())
	}

	if len(got) != 10 {
		t.Fatalf("delivered %d, want 10", len(got))
	}
	if b.Lost() != 0 {
		t.Fatalf("expected no loss, got %d", b.Lost())
	}
}

func TestGapBetweenFramesCountsAsLoss(t *testing.T) {
	a := NewEndpoint(NewConfig(), nil)
	b := NewEndpoint(NewConfig(), nil)

	var frames []struct {
		h       uint32
		payload []byte
	}
	a.SetTransmitCallback(func(h uint32, payload []byte) {
		frames = append(frames, struct {
			h       uint32
			payload []byte
		}{h, payload})
	})

	for i := 0; i < 5; i++ {
		a.Send(model.Message([]byte{byte(i)}))
		a.Tick(time.Now())
	}

	// Deliver frames 0, then 3 (skipping 1 and 2): two lost in between.
	b.OnReceiveFrame(frames[0].h, frames[0].payload)
	b.OnReceiveFrame(frames[3].h, frames[3].payload)

	if b.Lost() != 2 {
		t.Fatalf("lost: got %d, want 2", b.Lost())
	}
}

func TestSeqWrapsAtMaxSeq(t *testing.T) {
	a := NewEndpoint(NewConfig(WithMaxSeq(4)), nil)
	var seqs []byte
	a.SetTransmitCallback(func(h uint32, payload []byte) {
		seq, _ := decodeHeader(h)
		seqs = append(seqs, seq)
	})
	for i := 0; i < 6; i++ {
		a.Send(model.Message([]byte{byte(i)}))
		a.Tick(time.Now())
	}
	want := []byte{0, 1, 2, 3, 0, 1}
	for i, s := range seqs {
		if s != want[i] {
			t.Fatalf("seq %d: got %d, want %d", i, s, want[i])
		}
	}
}
