package transporttest

import "math/rand"

// UniformLossRelay forwards frames immediately, independently dropping each
// one with probability lossRate. It uses a fixed-seed source so a test run
// is reproducible; a deterministic seed does not make the loss pattern any
// less a uniform i.i.d. process over the frame sequence.
type UniformLossRelay struct {
	rng      *rand.Rand
	lossRate float64
	deliver  func(header uint32, payload []byte)

	sent, delivered uint64
}

// NewUniformLossRelay returns a relay that drops each forwarded frame
// independently with probability lossRate (0..1), calling deliver for every
// frame that survives.
func NewUniformLossRelay(seed int64, lossRate float64, deliver func(header uint32, payload []byte)) *UniformLossRelay {
	return &UniformLossRelay{
		rng:      rand.New(rand.NewSource(seed)),
		lossRate: lossRate,
		deliver:  deliver,
	}
}

// Forward is the transmit callback to wire an endpoint's transmit callback
// to.
func (r *UniformLossRelay) Forward(header uint32, payload []byte) {
	r.sent++
	if r.rng.Float64() < r.lossRate {
		return
	}
	r.delivered++
	r.deliver(header, append([]byte(nil), payload...))
}

// Sent returns the number of frames offered to Forward.
func (r *UniformLossRelay) Sent() uint64 { return r.sent }

// Delivered returns the number of frames that survived the loss roll.
func (r *UniformLossRelay) Delivered() uint64 { return r.delivered }
