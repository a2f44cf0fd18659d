package transporttest

import (
	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/reliable"
)

// DrainTo returns a reliable.ReceiveFunc that drains every message off the
// queue into w, in delivery order.
func DrainTo(w *Witness) reliable.ReceiveFunc {
	return func(q reliable.ReceiveQueue) {
		for {
			m, ok := q.Dequeue()
			if !ok {
				return
			}
			w.Record(m)
		}
	}
}

// DrainBatchTo returns the callback an unreliable.Endpoint's receive
// callback expects, recording every message in the delivered batch into w.
func DrainBatchTo(w *Witness) func([]model.Message) {
	return func(messages []model.Message) {
		for _, m := range messages {
			w.Record(m)
		}
	}
}
