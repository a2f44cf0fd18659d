package carrierpool

import (
	"context"
	"testing"
	"time"
)

func TestLeaseAndReleaseRoundTrip(t *testing.T) {
	p := New(2)
	a, err := p.TryLease()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.TryLease()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected distinct slot indices")
	}
	if p.InUse() != 2 {
		t.Fatalf("got %d in use, want 2", p.InUse())
	}
	if _, err := p.TryLease(); err != ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
	p.Release(a)
	if p.InUse() != 1 {
		t.Fatalf("got %d in use, want 1", p.InUse())
	}
	c, err := p.TryLease()
	if err != nil {
		t.Fatal(err)
	}
	if c != a {
		t.Fatalf("expected the freed slot %d to be reused, got %d", a, c)
	}
}

func TestReleaseUnleadedSlotIsNoOp(t *testing.T) {
	p := New(1)
	p.Release(0)
	if p.InUse() != 0 {
		t.Fatal("releasing a free slot must not change state")
	}
}

func TestLeaseBlocksUntilContextDeadline(t *testing.T) {
	p := New(1)
	if _, err := p.TryLease(); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := p.Lease(ctx); err == nil {
		t.Fatal("expected context deadline to expire with no free slot")
	}
}
