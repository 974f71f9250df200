package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcher_SameKeyRunsInOrder(t *testing.T) {
	d := NewDispatcher(4, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		i := i
		err := d.Enqueue(ctx, Job{Key: "session-1", Name: "step", Run: func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	d.Stop()

	if len(got) != 50 {
		t.Fatalf("expected 50 jobs, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: %v", i, got)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())
	a := d.shardIndex("abc")
	for i := 0; i < 10; i++ {
		if d.shardIndex("abc") != a {
			t.Fatalf("shard index changed")
		}
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard index out of range: %d", a)
	}
}

func TestDispatcher_SurvivesFailingAndPanickingJobs(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	done := make(chan struct{})
	jobs := []Job{
		{Key: "k", Name: "fail", Run: func(context.Context) error { return errors.New("boom") }},
		{Key: "k", Name: "panic", Run: func(context.Context) error { panic("boom") }},
		{Key: "k", Name: "ok", Run: func(context.Context) error { close(done); return nil }},
	}
	for _, j := range jobs {
		if err := d.Enqueue(ctx, j); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not survive failing jobs")
	}
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	d := NewDispatcher(2, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	err := d.Enqueue(context.Background(), Job{Key: "k", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestDispatcher_RefusesAfterContextEndsButDrainsQueued(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	gate := make(chan struct{})
	var ran sync.WaitGroup
	ran.Add(2)
	blocking := Job{Key: "k", Name: "first", Run: func(context.Context) error {
		<-gate
		ran.Done()
		return nil
	}}
	queued := Job{Key: "k", Name: "second", Run: func(context.Context) error {
		ran.Done()
		return nil
	}}
	for _, j := range []Job{blocking, queued} {
		if err := d.Enqueue(context.Background(), j); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	cancel()
	err := d.Enqueue(context.Background(), Job{Key: "k", Run: func(context.Context) error { return nil }})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after context end, got %v", err)
	}

	close(gate)
	d.Stop()

	finished := make(chan struct{})
	go func() { ran.Wait(); close(finished) }()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs queued before shutdown were dropped")
	}
}
