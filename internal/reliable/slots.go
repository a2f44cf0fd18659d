package reliable

import (
	"time"

	"github.com/netrelay/rudp/internal/model"
)

// outSlot is one entry of the send window, indexed by seq mod window. The
// zero value is an empty slot.
type outSlot struct {
	occupied bool
	seq      uint32
	payload  []byte
	sentTime time.Time

	// resendDeadline is the moment this slot becomes eligible for
	// retransmission. The zero [time.Time] is the NAK-accelerate
	// sentinel: it is always before "now", so a NAK-accelerated slot is
	// always the earliest resend candidate without any extra flag.
	resendDeadline time.Time

	// higherACKs counts how many inbound frames selectively acked a seq
	// higher than this slot's while this slot stayed unacked, the
	// fast-retransmit trigger from §2.3's supplemented heuristic.
	higherACKs int

	retries int
}

func (s *outSlot) clear() {
	*s = outSlot{}
}

// inSlot is one entry of the receive window, indexed by seq mod window.
type inSlot struct {
	occupied bool
	seq      uint32
	messages []model.Message
}

func (s *inSlot) clear() {
	*s = inSlot{}
}
