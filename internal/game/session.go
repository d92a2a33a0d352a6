package game

import (
	"log"
	"sync"
	"time"
)

// Observer receives every published snapshot. Snapshots are shared between observers
// and must not be modified.
type Observer func(PitchState)

// GoalHandler runs after a goal has been published.
type GoalHandler func(GoalEvent, PitchState)

// ResumeHandler runs after the goal pause has been dismissed.
type ResumeHandler func(PitchState)

// SessionOption configures a PitchSession.
type SessionOption func(*PitchSession)

// WithTickInterval overrides the fixed simulation interval.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *PitchSession) { s.tickInterval = d }
}

// WithAutoResume dismisses the goal pause by itself after d. Zero leaves dismissal to
// the caller.
func WithAutoResume(d time.Duration) SessionOption {
	return func(s *PitchSession) { s.autoResume = d }
}

// WithGoalHandler registers fn to run on every goal.
func WithGoalHandler(fn GoalHandler) SessionOption {
	return func(s *PitchSession) { s.goalHandlers = append(s.goalHandlers, fn) }
}

// WithResumeHandler registers fn to run whenever a goal pause ends.
func WithResumeHandler(fn ResumeHandler) SessionOption {
	return func(s *PitchSession) { s.resumeHandlers = append(s.resumeHandlers, fn) }
}

// PitchSession owns the current snapshot of one game. The tick loop and pointer events
// are its only producers; both go through one mutex around read, compute and publish.
type PitchSession struct {
	mu          sync.Mutex
	state       PitchState
	started     bool
	ended       bool
	resumeTimer *time.Timer

	observersMu sync.RWMutex
	observers   map[int]Observer
	nextObsID   int

	goalHandlers   []GoalHandler
	resumeHandlers []ResumeHandler
	tickInterval   time.Duration
	autoResume     time.Duration
	scheduler      *Scheduler
}

// NewPitchSession creates a session at the kickoff layout. The tick loop is not started.
func NewPitchSession(g Geometry, opts ...SessionOption) (*PitchSession, error) {
	st, err := NewPitchState(g)
	if err != nil {
		return nil, err
	}
	s := &PitchSession{
		state:        st,
		observers:    make(map[int]Observer),
		tickInterval: TickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.scheduler = NewScheduler(s.tickInterval, func() bool {
		_, running := s.tick()
		return running
	})
	return s, nil
}

// State returns the current snapshot.
func (s *PitchSession) State() PitchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Status reports whether the session is running, paused on a goal, or ended.
func (s *PitchSession) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.ended:
		return StatusEnded
	case s.state.ShowGoalDialog:
		return StatusPaused
	}
	return StatusRunning
}

// Subscribe registers fn for every new snapshot and returns a func that removes it.
func (s *PitchSession) Subscribe(fn Observer) func() {
	s.observersMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.observersMu.Unlock()

	return func() {
		s.observersMu.Lock()
		delete(s.observers, id)
		s.observersMu.Unlock()
	}
}

// Start begins ticking. While paused it only arms the loop to resume on dismissal;
// after Stop it does nothing.
func (s *PitchSession) Start() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.started = true
	paused := s.state.ShowGoalDialog
	s.mu.Unlock()
	if !paused {
		s.scheduler.Start()
	}
}

// Stop ends the session: the tick loop and any pending auto resume are cancelled.
func (s *PitchSession) Stop() {
	s.mu.Lock()
	s.ended = true
	if s.resumeTimer != nil {
		s.resumeTimer.Stop()
		s.resumeTimer = nil
	}
	s.mu.Unlock()
	s.scheduler.Stop()
}

// Tick advances the simulation by one step and reports whether a goal was scored.
// It does nothing while paused or ended.
func (s *PitchSession) Tick() bool {
	scored, _ := s.tick()
	return scored
}

func (s *PitchSession) tick() (scored bool, running bool) {
	s.mu.Lock()
	if s.ended || s.state.ShowGoalDialog {
		s.mu.Unlock()
		return false, false
	}

	next, ev, scored := Step(s.state)
	next.Seq++
	if scored {
		next.ShowGoalDialog = true
		next = next.Reset()
		if s.autoResume > 0 {
			s.resumeTimer = time.AfterFunc(s.autoResume, func() { s.DismissGoalPause() })
		}
	}
	s.state = next
	snap := next.Clone()
	s.mu.Unlock()

	s.notify(snap)
	if scored {
		log.Printf("[PITCH] Goal %s: %d-%d", ev.Side, ev.PlayerOneScore, ev.PlayerTwoScore)
		for _, h := range s.goalHandlers {
			h(ev, snap)
		}
	}
	return scored, !scored
}

// SubmitPointerEvent applies a pointer sample immediately, without waiting for a tick.
// Events keep moving paddles during the goal pause.
func (s *PitchSession) SubmitPointerEvent(e PointerEvent) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.state = ApplyPointerEvent(s.state, e)
	s.state.Seq++
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// ReleasePointers drops the paddle bindings of every pointer for which drop returns true.
func (s *PitchSession) ReleasePointers(drop func(PointerID) bool) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.state = ReleasePointers(s.state, drop)
	s.state.Seq++
	snap := s.state.Clone()
	s.mu.Unlock()

	s.notify(snap)
}

// DismissGoalPause ends the goal pause: the kickoff layout is restored, scores are kept
// and ticking resumes. It reports false when the session was not paused.
func (s *PitchSession) DismissGoalPause() bool {
	s.mu.Lock()
	if s.ended || !s.state.ShowGoalDialog {
		s.mu.Unlock()
		return false
	}
	if s.resumeTimer != nil {
		s.resumeTimer.Stop()
		s.resumeTimer = nil
	}
	s.state.ShowGoalDialog = false
	s.state = s.state.Reset()
	s.state.Seq++
	snap := s.state.Clone()
	restart := s.started
	s.mu.Unlock()

	s.notify(snap)
	for _, h := range s.resumeHandlers {
		h(snap)
	}

	if restart {
		// The previous loop exits on its own after the goal tick; wait for it before
		// starting a fresh one.
		s.scheduler.Stop()
		s.scheduler.Start()
	}
	return true
}

func (s *PitchSession) notify(snap PitchState) {
	s.observersMu.RLock()
	defer s.observersMu.RUnlock()
	for _, fn := range s.observers {
		fn(snap)
	}
}
