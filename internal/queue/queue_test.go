package queue

import (
	"sync"
	"testing"
	"time"
)

// deferredRun mirrors the shape of a retry backlog entry.
type deferredRun struct {
	name     string
	attempt  int
	notAfter time.Time
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[deferredRun]()

	q.Push(deferredRun{name: "boundary-sweep", attempt: 1})
	q.Push(deferredRun{name: "mine-expiry", attempt: 1}, deferredRun{name: "boundary-sweep", attempt: 2})

	if q.Len() != 3 {
		t.Fatalf("expected 3 queued, got %d", q.Len())
	}

	want := []string{"boundary-sweep", "mine-expiry", "boundary-sweep"}
	for i, name := range want {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d: queue unexpectedly empty", i)
		}
		if item.name != name {
			t.Errorf("pop %d: expected %q, got %q", i, name, item.name)
		}
	}
	if !q.Empty() {
		t.Error("expected empty queue after draining")
	}
}

func TestQueue_PopEmpty(t *testing.T) {
	q := New[deferredRun]()

	item, ok := q.Pop()
	if ok {
		t.Fatalf("expected ok=false on empty queue, got %+v", item)
	}
	if item.name != "" || item.attempt != 0 {
		t.Errorf("expected zero value, got %+v", item)
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)

	got := q.Drain()
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", got)
	}
	if !q.Empty() {
		t.Error("expected empty queue after drain")
	}
	if drained := q.Drain(); len(drained) != 0 {
		t.Errorf("expected nothing from second drain, got %v", drained)
	}
}

func TestQueue_PushAfterDrain(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Drain()

	q.Push(2)
	item, ok := q.Pop()
	if !ok || item != 2 {
		t.Fatalf("expected 2 after drain and push, got %d ok=%v", item, ok)
	}
}

func TestQueue_Concurrent(t *testing.T) {
	const (
		producers   = 8
		perProducer = 100
	)
	q := New[deferredRun]()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(deferredRun{name: "job", attempt: p})
			}
		}(p)
	}
	wg.Wait()

	if q.Len() != producers*perProducer {
		t.Fatalf("expected %d queued, got %d", producers*perProducer, q.Len())
	}

	popped := 0
	for {
		if _, ok := q.Pop(); !ok {
			break
		}
		popped++
	}
	if popped != producers*perProducer {
		t.Errorf("expected to pop %d, got %d", producers*perProducer, popped)
	}
}

func TestQueue_ConcurrentDrain(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup
	total := 0
	var mu sync.Mutex

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			q.Push(i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			batch := q.Drain()
			mu.Lock()
			total += len(batch)
			mu.Unlock()
		}
	}()
	wg.Wait()

	total += len(q.Drain())
	if total != 500 {
		t.Errorf("expected every pushed item exactly once, got %d of 500", total)
	}
}
