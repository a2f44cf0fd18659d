package transporttest

import (
	"testing"
	"time"

	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/reliable"
)

func newScenarioPair(t *testing.T, seqBits uint) (a, b *reliable.Endpoint) {
	t.Helper()
	mkCfg := func() *reliable.Config {
		return reliable.NewConfig(
			reliable.WithSeqBits(seqBits),
			reliable.WithMaxMessageSize(128),
			reliable.WithMaxPacketSize(256),
			reliable.WithUpdateInterval(10*time.Millisecond),
		)
	}
	a = reliable.NewEndpoint(mkCfg(), nil)
	b = reliable.NewEndpoint(mkCfg(), nil)
	a.UnlockTransmission()
	b.UnlockTransmission()
	return a, b
}

// TestFiftyPercentLossDeliversAllMessagesInOrder exercises spec scenario 2:
// 1000 messages each way under 50% uniform loss must all eventually be
// delivered, in order, with no duplicate delivery.
func TestFiftyPercentLossDeliversAllMessagesInOrder(t *testing.T) {
	a, b := newScenarioPair(t, 4)
	wAB := NewWitness()
	wBA := NewWitness()
	b.SetReceiveCallback(DrainTo(wAB))
	a.SetReceiveCallback(DrainTo(wBA))

	relayAB := NewUniformLossRelay(1, 0.5, b.OnReceiveFrame)
	relayBA := NewUniformLossRelay(2, 0.5, a.OnReceiveFrame)
	a.SetTransmitCallback(relayAB.Forward)
	b.SetTransmitCallback(relayBA.Forward)

	const n = 1000
	for i := 0; i < n; i++ {
		if _, err := a.Send(model.Message([]byte{byte(i), byte(i >> 8)})); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Send(model.Message([]byte{byte(i), byte(i >> 8)})); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	for tick := 0; tick < 30000 && (wAB.Len() < n || wBA.Len() < n); tick++ {
		a.Tick(now)
		b.Tick(now)
		now = now.Add(10 * time.Millisecond)
	}

	if wAB.Len() != n || wBA.Len() != n {
		t.Fatalf("delivered %d/%d messages a->b, %d/%d b->a", wAB.Len(), n, wBA.Len(), n)
	}
	for i, m := range wAB.Messages() {
		got := int(m[0]) | int(m[1])<<8
		if got != i {
			t.Fatalf("a->b message %d delivered out of order: got %d", i, got)
		}
	}
	for i, m := range wBA.Messages() {
		got := int(m[0]) | int(m[1])<<8
		if got != i {
			t.Fatalf("b->a message %d delivered out of order: got %d", i, got)
		}
	}
}

// TestNinetyFivePercentLossStillDelivers exercises spec scenario 3: delivery
// still completes under 95% uniform loss, in order. Resend overhead is not
// measured here.
func TestNinetyFivePercentLossStillDelivers(t *testing.T) {
	a, b := newScenarioPair(t, 4)
	w := NewWitness()
	b.SetReceiveCallback(DrainTo(w))

	relay := NewUniformLossRelay(3, 0.95, b.OnReceiveFrame)
	a.SetTransmitCallback(relay.Forward)
	b.SetTransmitCallback(func(h uint32, payload []byte) { a.OnReceiveFrame(h, payload) })

	const n = 100
	for i := 0; i < n; i++ {
		if _, err := a.Send(model.Message([]byte{byte(i)})); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	for tick := 0; tick < 10000 && w.Len() < n; tick++ {
		a.Tick(now)
		b.Tick(now)
		now = now.Add(10 * time.Millisecond)
	}

	if w.Len() != n {
		t.Fatalf("delivered %d of %d messages under 95%% loss", w.Len(), n)
	}
	for i, m := range w.Messages() {
		if m[0] != byte(i) {
			t.Fatalf("message %d out of order", i)
		}
	}
}
