package game

import (
	"context"
	"sync"
	"time"
)

// Scheduler calls a tick function at a fixed interval on its own goroutine.
// The loop ends when the tick function returns false or when Stop is called.
type Scheduler struct {
	interval time.Duration
	tick     func() bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(interval time.Duration, tick func() bool) *Scheduler {
	if interval <= 0 {
		interval = TickInterval
	}
	return &Scheduler{interval: interval, tick: tick}
}

// Start launches the tick loop. It returns false if a loop is already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, done)
	return true
}

// Stop cancels the loop and waits for it to exit, so no tick is in flight once it
// returns. It must not be called from inside the tick function.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		s.mu.Lock()
		if s.done == done {
			s.running = false
			s.cancel = nil
		}
		s.mu.Unlock()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A cancel that raced the ticker wins.
			if ctx.Err() != nil {
				return
			}
			if !s.tick() {
				return
			}
		}
	}
}
