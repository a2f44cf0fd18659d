package pconncarrier

import (
	"testing"
	"time"
)

func TestLocalPairRoundTrips(t *testing.T) {
	a, b, err := NewLocalPair("a", "b", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	got := make(chan string, 1)
	b.OnEvent(func(peer, text string) { got <- text })

	if err := a.BroadcastToPeer("b", []byte("ping")); err != nil {
		t.Fatal(err)
	}

	select {
	case text := <-got:
		if text == "" {
			t.Fatal("expected non-empty base-N text")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}
}

func TestFaultDropsDatagram(t *testing.T) {
	a, b, err := NewLocalPair("a", "b", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	defer b.Close()

	a.SetFault(func() (bool, time.Duration) { return true, 0 })

	got := make(chan string, 1)
	b.OnEvent(func(peer, text string) { got <- text })

	if err := a.BroadcastToPeer("b", []byte("dropped")); err != nil {
		t.Fatal(err)
	}

	select {
	case <-got:
		t.Fatal("expected the datagram to be dropped")
	case <-time.After(200 * time.Millisecond):
	}
}
