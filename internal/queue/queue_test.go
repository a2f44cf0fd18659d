package queue

import "testing"

func TestEnqueueDequeuePreservesOrder(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Enqueue(i)
	}
	if q.Len() != 5 {
		t.Fatalf("len: got %d, want 5", q.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatalf("expected a value at index %d", i)
		}
		if v.(int) != i {
			t.Fatalf("got %v, want %d", v, i)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, len=%d", q.Len())
	}
}

func TestDequeueEmptyReturnsFalse(t *testing.T) {
	q := New()
	if _, ok := q.Dequeue(); ok {
		t.Fatal("expected false on empty dequeue")
	}
}

func TestPeekIsNonDestructive(t *testing.T) {
	q := New()
	q.Enqueue("a")
	q.Enqueue("b")
	v, ok := q.Peek()
	if !ok || v.(string) != "a" {
		t.Fatalf("peek: got %v, %v", v, ok)
	}
	if q.Len() != 2 {
		t.Fatal("peek must not remove the element")
	}
	v, _ = q.Dequeue()
	if v.(string) != "a" {
		t.Fatal("dequeue after peek should return the same element")
	}
}

func TestInterleavedEnqueueDequeue(t *testing.T) {
	q := New()
	q.Enqueue(1)
	q.Enqueue(2)
	v, _ := q.Dequeue()
	if v.(int) != 1 {
		t.Fatal("fifo order violated")
	}
	q.Enqueue(3)
	v, _ = q.Dequeue()
	if v.(int) != 2 {
		t.Fatal("fifo order violated")
	}
	v, _ = q.Dequeue()
	if v.(int) != 3 {
		t.Fatal("fifo order violated")
	}
	if q.Len() != 0 {
		t.Fatal("expected empty queue")
	}
}
