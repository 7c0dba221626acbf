package archive

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScheduler_TickUsesClock(t *testing.T) {
	sw := &countingSweeper{}
	s := &Scheduler{Sweeper: sw, Now: func() time.Time { return time.UnixMilli(42) }}
	s.Tick()
	if sw.calls.Load() != 1 || sw.last.Load() != 42 {
		t.Fatalf("calls=%d last=%d", sw.calls.Load(), sw.last.Load())
	}
}

func TestScheduler_RunTicksUntilCancelled(t *testing.T) {
	sw := &countingSweeper{}
	s := &Scheduler{Sweeper: sw, Interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sw.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler did not tick; calls=%d", sw.calls.Load())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}

	stopped := sw.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if sw.calls.Load() != stopped {
		t.Fatalf("ticks continued after cancel")
	}
}
