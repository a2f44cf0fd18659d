package hostsim

import (
	"testing"

	"github.com/netrelay/rudp/internal/baseenc"
)

func TestEventCarrierDeliversInOrder(t *testing.T) {
	c := NewEventCarrier(1024)
	var got []string
	c.OnEvent("M", func(peer, text string) {
		got = append(got, peer+":"+text)
	})

	c.BroadcastToPeer("b", "M", []byte("one"))
	c.BroadcastToPeer("b", "M", []byte("two"))
	c.Flush()

	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(got))
	}
}

func TestEventCarrierRejectsOverBudget(t *testing.T) {
	c := NewEventCarrier(4)
	if err := c.BroadcastToPeer("b", "M", []byte("too long for budget")); err != ErrEventTooLarge {
		t.Fatalf("got %v, want ErrEventTooLarge", err)
	}
}

func TestEventCarrierDropCall(t *testing.T) {
	c := NewEventCarrier(1024)
	c.DropCall(2)

	var got []string
	c.OnEvent("M", func(peer, text string) {
		raw, _ := baseenc.Decode(text)
		got = append(got, string(raw))
	})

	c.BroadcastToPeer("b", "M", []byte("first"))
	c.BroadcastToPeer("b", "M", []byte("second"))
	c.BroadcastToPeer("b", "M", []byte("third"))
	c.Flush()

	if len(got) != 2 || got[0] != "first" || got[1] != "third" {
		t.Fatalf("got %v, want [first third]", got)
	}
}

func TestEventCarrierDuplicateCall(t *testing.T) {
	c := NewEventCarrier(1024)
	c.DuplicateCall(1)

	var got int
	c.OnEvent("M", func(peer, text string) { got++ })

	c.BroadcastToPeer("b", "M", []byte("first"))
	c.Flush()

	if got != 2 {
		t.Fatalf("got %d deliveries, want 2", got)
	}
}

func TestEventCarrierFlushOrderReorders(t *testing.T) {
	c := NewEventCarrier(1024)
	var got []string
	c.OnEvent("M", func(peer, text string) {
		raw, _ := baseenc.Decode(text)
		got = append(got, string(raw))
	})

	c.BroadcastToPeer("b", "M", []byte("a"))
	c.BroadcastToPeer("b", "M", []byte("b"))
	c.BroadcastToPeer("b", "M", []byte("c"))
	c.FlushOrder([]int{2, 0, 1})

	want := []string{"c", "a", "b"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
