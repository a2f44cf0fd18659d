package reliable

import (
	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/queue"
)

// messageQueue is a typed view over [queue.Queue] holding model.Message
// values, used for both the send queue and the receive queue.
type messageQueue struct {
	q *queue.Queue
}

func newMessageQueue() *messageQueue {
	return &messageQueue{q: queue.New()}
}

func (mq *messageQueue) Enqueue(m model.Message) {
	mq.q.Enqueue(m)
}

func (mq *messageQueue) Dequeue() (model.Message, bool) {
	v, ok := mq.q.Dequeue()
	if !ok {
		return nil, false
	}
	return v.(model.Message), true
}

func (mq *messageQueue) Peek() (model.Message, bool) {
	v, ok := mq.q.Peek()
	if !ok {
		return nil, false
	}
	return v.(model.Message), true
}

func (mq *messageQueue) Len() int {
	return mq.q.Len()
}

var _ ReceiveQueue = (*messageQueue)(nil)
