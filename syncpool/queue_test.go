package syncpool

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/utilitywarehouse/ghopac/syncer"
)

func TestQueue_order(t *testing.T) {
	q := NewQueue(10)
	var want []syncer.Job
	for i := range 5 {
		j := syncer.Job{Path: fmt.Sprintf("/src/repo-%d", i)}
		want = append(want, j)
		q.Enqueue(j)
	}
	q.Close()

	var got []syncer.Job
	for {
		j, ok := q.Dequeue()
		if !ok {
			break
		}
		got = append(got, j)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dequeue() order mismatch (-want +got):\n%s", diff)
	}

	// closed and drained queue keeps returning end of stream
	if _, ok := q.Dequeue(); ok {
		t.Errorf("Dequeue() on drained queue returned ok")
	}
}

func TestQueue_dequeueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue(1)
	got := make(chan syncer.Job)

	go func() {
		j, ok := q.Dequeue()
		if !ok {
			t.Error("unexpected end of stream")
		}
		got <- j
	}()

	select {
	case <-got:
		t.Fatal("Dequeue() returned before any job was queued")
	case <-time.After(100 * time.Millisecond):
	}

	q.Enqueue(syncer.Job{Path: "/src/repo"})
	select {
	case j := <-got:
		if j.Path != "/src/repo" {
			t.Errorf("Dequeue() = %v, want /src/repo", j)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Dequeue() didn't return after job was queued")
	}
	q.Close()
}

func TestQueue_closeWakesConsumers(t *testing.T) {
	q := NewQueue(1)
	done := make(chan bool)

	for range 3 {
		go func() {
			_, ok := q.Dequeue()
			done <- ok
		}()
	}
	q.Close()

	for range 3 {
		select {
		case ok := <-done:
			if ok {
				t.Errorf("Dequeue() on closed empty queue returned ok")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("consumer not released by Close()")
		}
	}
}

func TestQueue_contractViolations(t *testing.T) {
	tests := []struct {
		name string
		fn   func(q *Queue)
	}{
		{"close_twice", func(q *Queue) { q.Close(); q.Close() }},
		{"enqueue_after_close", func(q *Queue) { q.Close(); q.Enqueue(syncer.Job{Path: "/src"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected panic")
				}
			}()
			tt.fn(NewQueue(1))
		})
	}
}
