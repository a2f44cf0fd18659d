// Package carrierpool implements the bitset pool of carrier-slot indices
// that the dispatcher leases from at peer-attach time and returns at
// peer-detach. Mutation only ever happens on attach/detach, which the host
// is required to serialize; the weighted semaphore both bounds concurrent
// lease attempts and gives Lease a context-aware blocking path for callers
// that want to wait for a slot to free up instead of failing immediately.
package carrierpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// ErrExhausted is returned by TryLease when no slot is free.
var ErrExhausted = fmt.Errorf("carrierpool: no free slot")

// Pool is a fixed-size bitset of carrier-slot indices. The zero value is
// invalid; use [New].
type Pool struct {
	inUse []bool
	sem   *semaphore.Weighted
	size  int
}

// New returns a Pool with size carrier slots, all initially free.
func New(size int) *Pool {
	return &Pool{
		inUse: make([]bool, size),
		sem:   semaphore.NewWeighted(int64(size)),
		size:  size,
	}
}

// Size returns the total number of slots in the pool.
func (p *Pool) Size() int {
	return p.size
}

// TryLease returns the index of a free slot and marks it in-use, or
// [ErrExhausted] if the pool is fully leased.
func (p *Pool) TryLease() (int, error) {
	if !p.sem.TryAcquire(1) {
		return 0, ErrExhausted
	}
	for i, used := range p.inUse {
		if !used {
			p.inUse[i] = true
			return i, nil
		}
	}
	// The semaphore's count and inUse disagree; release what we just
	// acquired since we found nothing to hand out.
	p.sem.Release(1)
	return 0, ErrExhausted
}

// Lease blocks until a slot is free or ctx is done.
func (p *Pool) Lease(ctx context.Context) (int, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	for i, used := range p.inUse {
		if !used {
			p.inUse[i] = true
			return i, nil
		}
	}
	p.sem.Release(1)
	return 0, ErrExhausted
}

// Release returns slot idx to the pool. Releasing an already-free slot is
// a no-op.
func (p *Pool) Release(idx int) {
	if idx < 0 || idx >= len(p.inUse) || !p.inUse[idx] {
		return
	}
	p.inUse[idx] = false
	p.sem.Release(1)
}

// InUse reports how many slots are currently leased.
func (p *Pool) InUse() int {
	n := 0
	for _, used := range p.inUse {
		if used {
			n++
		}
	}
	return n
}
