package dispatcher

import (
	"time"

	"github.com/netrelay/rudp/internal/workers"
)

// StartTickLoop starts a background goroutine that calls Tick on every
// attached peer's endpoints (and the shared outbound unreliable endpoint)
// once per interval, via the workers.Manager convention the rest of this
// module uses for its driver goroutines. Carrier callback delivery
// (OnReceive) is still invoked directly by the host; this loop only drives
// the timer side of the protocol.
func (d *Dispatcher) StartTickLoop(manager *workers.Manager, interval time.Duration) {
	manager.StartWorker(func() {
		defer manager.OnWorkerDone()
		d.cfg.logger.Debugf("dispatcher: tick loop started, interval=%s", interval)
		defer d.cfg.logger.Debugf("dispatcher: tick loop stopped")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				d.tickAll(now)
			case <-manager.ShouldShutdown():
				return
			}
		}
	})
}

func (d *Dispatcher) tickAll(now time.Time) {
	d.mu.Lock()
	peers := make([]*peer, 0, len(d.peers))
	for _, p := range d.peers {
		peers = append(peers, p)
	}
	d.mu.Unlock()

	for _, p := range peers {
		p.s.Tick(now)
		p.m.Tick(now)
		p.b.Tick(now)
	}
	d.outboundU.Tick(now)
}
