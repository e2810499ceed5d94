package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/shortlist/internal/domain/model"
)

func task(id string) Task {
	return model.Task{
		ID:        id,
		Candidate: model.Candidate{Name: "cand-" + id, JobID: "1021"},
		CV:        []byte("%PDF-1.4"),
		Reply:     make(chan model.Result, 1),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if c := q.Cap(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}
	if !q.Enqueue(ctx, task("t1")) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "t1" || got.Candidate.Name != "cand-t1" {
		t.Errorf("unexpected task %+v", got)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, task("t1")) || !q.Enqueue(ctx, task("t2")) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, task("t3")) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if q.Enqueue(ctx, task("t1")) {
		t.Error("expected enqueue to fail with a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(50))
	ctx := context.Background()
	const producers, perProducer = 10, 100

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for !q.Enqueue(ctx, task(fmt.Sprintf("%d-%d", id, j))) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	seen := make(map[string]bool)
	out := q.Dequeue(ctx)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		_ = q.Close()
		close(done)
	}()
	for tk := range out {
		if seen[tk.ID] {
			t.Fatalf("task %s delivered twice", tk.ID)
		}
		seen[tk.ID] = true
	}
	<-done

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d tasks, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q.Enqueue(ctx, task(fmt.Sprintf("t%d", i)))
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, task("late")) {
		t.Error("enqueue after close must fail")
	}

	n := 0
	for range q.Dequeue(ctx) {
		n++
	}
	if n != 3 {
		t.Errorf("queued tasks must drain after close, got %d", n)
	}
}
