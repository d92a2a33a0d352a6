package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerTicksUntilStopped(t *testing.T) {
	var n int64
	s := NewScheduler(time.Millisecond, func() bool {
		atomic.AddInt64(&n, 1)
		return true
	})
	if !s.Start() {
		t.Fatal("Start returned false on a stopped scheduler")
	}
	if s.Start() {
		t.Error("second Start should report the loop already running")
	}
	waitFor(t, "ticks", func() bool { return atomic.LoadInt64(&n) >= 5 })

	s.Stop()
	if s.Running() {
		t.Error("Running after Stop")
	}
	stopped := atomic.LoadInt64(&n)
	time.Sleep(10 * time.Millisecond)
	if got := atomic.LoadInt64(&n); got != stopped {
		t.Errorf("ticked after Stop: %d -> %d", stopped, got)
	}
}

func TestSchedulerEndsWhenTickReturnsFalse(t *testing.T) {
	var n int64
	s := NewScheduler(time.Millisecond, func() bool {
		return atomic.AddInt64(&n, 1) < 3
	})
	s.Start()
	waitFor(t, "loop exit", func() bool { return !s.Running() })
	if got := atomic.LoadInt64(&n); got != 3 {
		t.Errorf("ticked %d times, want 3", got)
	}

	// Stop on an exited loop returns immediately.
	s.Stop()
}

func TestSchedulerRestart(t *testing.T) {
	var n int64
	s := NewScheduler(time.Millisecond, func() bool {
		atomic.AddInt64(&n, 1)
		return true
	})
	s.Start()
	s.Stop()
	first := atomic.LoadInt64(&n)

	if !s.Start() {
		t.Fatal("restart failed")
	}
	defer s.Stop()
	waitFor(t, "ticks after restart", func() bool { return atomic.LoadInt64(&n) > first })
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(0, func() bool { return false })
	if s.interval != TickInterval {
		t.Errorf("interval %v, want %v", s.interval, TickInterval)
	}
}
