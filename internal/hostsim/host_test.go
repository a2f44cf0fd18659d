package hostsim

import (
	"testing"

	"github.com/netrelay/rudp/internal/dispatcher"
)

type receivedFrame struct {
	peer    string
	role    dispatcher.Role
	header  uint32
	payload []byte
}

func TestFrameMergeSplitRoundTrip(t *testing.T) {
	header, payload, ok := splitFrame(mergeFrame(0xdeadbeef, []byte("payload")))
	if !ok {
		t.Fatal("expected split to succeed")
	}
	if header != 0xdeadbeef || string(payload) != "payload" {
		t.Fatalf("got (%#x, %q)", header, payload)
	}
}

func TestFrameSplitRejectsShortBuffer(t *testing.T) {
	if _, _, ok := splitFrame([]byte{1, 2}); ok {
		t.Fatal("expected split to reject a too-short buffer")
	}
}

func TestLinkedHostsDeliverAcrossEveryRole(t *testing.T) {
	var aGot, bGot []receivedFrame
	sSlotSize := dispatcher.NewConfig().SMaxPacketSize() + FrameHeaderSize
	a, b := NewLinkedHosts(1024, sSlotSize, "a", "b",
		func(peer string, role dispatcher.Role, header uint32, payload []byte) {
			aGot = append(aGot, receivedFrame{peer, role, header, payload})
		},
		func(peer string, role dispatcher.Role, header uint32, payload []byte) {
			bGot = append(bGot, receivedFrame{peer, role, header, payload})
		},
	)

	if err := a.TransmitS("b", 1, []byte("s-data")); err != nil {
		t.Fatal(err)
	}
	if err := a.TransmitM("b", 2, []byte("m-data")); err != nil {
		t.Fatal(err)
	}
	a.Flush()
	if err := a.TransmitB("b", 3, []byte("b-data")); err != nil {
		t.Fatal(err)
	}
	if err := a.TransmitU(4, []byte("u-data")); err != nil {
		t.Fatal(err)
	}

	if len(bGot) != 4 {
		t.Fatalf("got %d frames delivered to b, want 4", len(bGot))
	}
	for _, f := range bGot {
		if f.peer != "a" {
			t.Fatalf("got peer %q, want a", f.peer)
		}
	}

	if err := b.TransmitS("a", 5, []byte("reply")); err != nil {
		t.Fatal(err)
	}
	if len(aGot) != 1 || aGot[0].peer != "b" || aGot[0].role != dispatcher.RoleS {
		t.Fatalf("got %v, want one RoleS frame from b", aGot)
	}
}
