package transporttest

import "testing"

func TestRelayFlushDeliversInArrivalOrder(t *testing.T) {
	var got []uint32
	r := NewRelay(func(header uint32, payload []byte) { got = append(got, header) })

	r.Forward(1, nil)
	r.Forward(2, nil)
	r.Forward(3, nil)
	r.Flush()

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestRelayDropAndDuplicateFrame(t *testing.T) {
	var got []uint32
	r := NewRelay(func(header uint32, payload []byte) { got = append(got, header) })
	r.DropFrame(2)
	r.DuplicateFrame(3)

	r.Forward(1, nil)
	r.Forward(2, nil)
	r.Forward(3, nil)
	r.Flush()

	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 3 {
		t.Fatalf("got %v, want [1 3 3]", got)
	}
}

func TestRelayFlushOrderReorders(t *testing.T) {
	var got []uint32
	r := NewRelay(func(header uint32, payload []byte) { got = append(got, header) })

	r.Forward(0, nil)
	r.Forward(1, nil)
	r.Forward(2, nil)
	r.FlushOrder([]int{2, 0, 1})

	if len(got) != 3 || got[0] != 2 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("got %v, want [2 0 1]", got)
	}
}
